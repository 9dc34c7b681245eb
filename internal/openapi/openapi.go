// Package openapi describes the HTTP surface of both services.
package openapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/fluxynet/blog/internal/apperr"
)

const Version = "1.0.0"

const securityScheme = "session"

func ref(name string, s *openapi3.Schema) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Ref: "#/components/schemas/" + name, Value: s}
}

func schemas() map[string]*openapi3.Schema {
	status := openapi3.NewStringSchema().WithEnum("published", "draft", "trash")

	user := openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewInt64Schema()).
		WithProperty("login", openapi3.NewStringSchema()).
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("avatar_url", openapi3.NewStringSchema())
	user.Required = []string{"id", "login"}

	article := openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewUUIDSchema()).
		WithProperty("title", openapi3.NewStringSchema()).
		WithProperty("description", openapi3.NewStringSchema()).
		WithProperty("content", openapi3.NewStringSchema()).
		WithProperty("author", openapi3.NewStringSchema()).
		WithPropertyRef("status", ref("Status", status)).
		WithProperty("created_at", openapi3.NewDateTimeSchema()).
		WithProperty("updated_at", openapi3.NewDateTimeSchema())

	request := openapi3.NewObjectSchema().
		WithProperty("title", openapi3.NewStringSchema()).
		WithProperty("description", openapi3.NewStringSchema()).
		WithProperty("content", openapi3.NewStringSchema())
	request.Required = []string{"title", "description", "content"}

	listing := openapi3.NewObjectSchema().
		WithPropertyRef("items", &openapi3.SchemaRef{Value: openapi3.NewArraySchema().WithItems(article)}).
		WithProperty("pages", openapi3.NewInt64Schema())

	problem := openapi3.NewObjectSchema().
		WithProperty("type", openapi3.NewStringSchema()).
		WithProperty("title", openapi3.NewStringSchema()).
		WithProperty("status", openapi3.NewIntegerSchema()).
		WithProperty("detail", openapi3.NewStringSchema()).
		WithProperty("instance", openapi3.NewStringSchema())

	return map[string]*openapi3.Schema{
		"Status":         status,
		"User":           user,
		"Article":        article,
		"ArticleRequest": request,
		"ArticleListing": listing,
		"Problem":        problem,
	}
}

type builder struct {
	schemas map[string]*openapi3.Schema
}

func (b builder) json(name, description string) *openapi3.ResponseRef {
	return &openapi3.ResponseRef{Value: openapi3.NewResponse().
		WithDescription(description).
		WithJSONSchemaRef(ref(name, b.schemas[name]))}
}

func (b builder) problem(status int) *openapi3.ResponseRef {
	content := openapi3.NewContentWithSchemaRef(ref("Problem", b.schemas["Problem"]), []string{apperr.ContentTypeProblemJSON})
	return &openapi3.ResponseRef{Value: openapi3.NewResponse().
		WithDescription(http.StatusText(status)).
		WithContent(content)}
}

func empty(description string) *openapi3.ResponseRef {
	return &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription(description)}
}

func (b builder) operation(id, summary string, secured bool, responses map[int]*openapi3.ResponseRef) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = id
	op.Summary = summary

	var opts []openapi3.NewResponsesOption
	for status, r := range responses {
		opts = append(opts, openapi3.WithStatus(status, r))
	}
	op.Responses = openapi3.NewResponses(opts...)

	if secured {
		op.Security = &openapi3.SecurityRequirements{openapi3.NewSecurityRequirement().Authenticate(securityScheme)}
	}
	return op
}

func (b builder) withArticleID(op *openapi3.Operation) *openapi3.Operation {
	op.AddParameter(openapi3.NewPathParameter("id").WithSchema(openapi3.NewUUIDSchema()))
	return op
}

func (b builder) withArticleBody(op *openapi3.Operation) *openapi3.Operation {
	op.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().
		WithRequired(true).
		WithJSONSchemaRef(ref("ArticleRequest", b.schemas["ArticleRequest"]))}
	return op
}

// Document builds the API description. cookieName is the session cookie
// both services read.
func Document(cookieName string) *openapi3.T {
	b := builder{schemas: schemas()}

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   "blog",
			Version: Version,
		},
		Paths: openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{},
			SecuritySchemes: openapi3.SecuritySchemes{
				securityScheme: &openapi3.SecuritySchemeRef{Value: &openapi3.SecurityScheme{
					Type: "apiKey",
					In:   "cookie",
					Name: cookieName,
				}},
			},
		},
	}
	for name, s := range b.schemas {
		doc.Components.Schemas[name] = &openapi3.SchemaRef{Value: s}
	}

	found := empty("Redirect")

	doc.Paths.Set("/auth/login", &openapi3.PathItem{
		Get: b.operation("startLogin", "Redirect to GitHub", false, map[int]*openapi3.ResponseRef{
			http.StatusFound: found,
		}),
	})

	callback := b.operation("loginCallback", "Finish the GitHub login and set the session cookie", false, map[int]*openapi3.ResponseRef{
		http.StatusFound:               found,
		http.StatusBadRequest:          b.problem(http.StatusBadRequest),
		http.StatusForbidden:           b.problem(http.StatusForbidden),
		http.StatusInternalServerError: b.problem(http.StatusInternalServerError),
	})
	callback.AddParameter(openapi3.NewQueryParameter("code").WithSchema(openapi3.NewStringSchema()))
	doc.Paths.Set("/auth/login/callback", &openapi3.PathItem{Get: callback})

	doc.Paths.Set("/auth/logout", &openapi3.PathItem{
		Get: b.operation("logout", "End the current session", false, map[int]*openapi3.ResponseRef{
			http.StatusOK:                  empty("Logged out"),
			http.StatusInternalServerError: b.problem(http.StatusInternalServerError),
		}),
	})

	doc.Paths.Set("/auth/me", &openapi3.PathItem{
		Get: b.operation("me", "Current user", true, map[int]*openapi3.ResponseRef{
			http.StatusOK:           b.json("User", "Session user"),
			http.StatusUnauthorized: b.problem(http.StatusUnauthorized),
			http.StatusNotFound:     b.problem(http.StatusNotFound),
		}),
	})

	unauthorized := b.problem(http.StatusUnauthorized)
	notFound := b.problem(http.StatusNotFound)
	badRequest := b.problem(http.StatusBadRequest)

	list := b.operation("listArticles", "List articles", true, map[int]*openapi3.ResponseRef{
		http.StatusOK:           b.json("ArticleListing", "One page of articles"),
		http.StatusBadRequest:   badRequest,
		http.StatusUnauthorized: unauthorized,
	})
	list.AddParameter(openapi3.NewQueryParameter("status").WithSchema(openapi3.NewStringSchema().WithEnum("all", "published", "draft", "trash")))
	list.AddParameter(openapi3.NewQueryParameter("page").WithSchema(openapi3.NewInt64Schema().WithMin(1)))

	doc.Paths.Set("/articles", &openapi3.PathItem{
		Get: list,
		Post: b.withArticleBody(b.operation("createArticle", "Create a draft", true, map[int]*openapi3.ResponseRef{
			http.StatusAccepted:     b.json("Article", "Created"),
			http.StatusBadRequest:   badRequest,
			http.StatusUnauthorized: unauthorized,
		})),
	})

	doc.Paths.Set("/articles/{id}", &openapi3.PathItem{
		Get: b.withArticleID(b.operation("getArticle", "Get an article", true, map[int]*openapi3.ResponseRef{
			http.StatusOK:           b.json("Article", "The article"),
			http.StatusBadRequest:   badRequest,
			http.StatusUnauthorized: unauthorized,
			http.StatusNotFound:     notFound,
		})),
		Patch: b.withArticleBody(b.withArticleID(b.operation("updateArticle", "Update an article", true, map[int]*openapi3.ResponseRef{
			http.StatusAccepted:     empty("Updated"),
			http.StatusBadRequest:   badRequest,
			http.StatusUnauthorized: unauthorized,
			http.StatusNotFound:     notFound,
		}))),
		Delete: b.withArticleID(b.operation("deleteArticle", "Delete an article", true, map[int]*openapi3.ResponseRef{
			http.StatusAccepted:     empty("Deleted"),
			http.StatusBadRequest:   badRequest,
			http.StatusUnauthorized: unauthorized,
			http.StatusNotFound:     notFound,
		})),
	})

	for _, move := range []struct{ path, id, summary string }{
		{"publish", "publishArticle", "Publish an article"},
		{"draft", "draftArticle", "Move an article back to draft"},
		{"trash", "trashArticle", "Move an article to trash"},
	} {
		doc.Paths.Set("/articles/{id}/status/"+move.path, &openapi3.PathItem{
			Put: b.withArticleID(b.operation(move.id, move.summary, true, map[int]*openapi3.ResponseRef{
				http.StatusAccepted:     empty("Status changed"),
				http.StatusBadRequest:   badRequest,
				http.StatusUnauthorized: unauthorized,
				http.StatusNotFound:     notFound,
			})),
		})
	}

	return doc
}

// JSON validates doc and renders it indented.
func JSON(ctx context.Context, doc *openapi3.T) ([]byte, error) {
	if err := doc.Validate(ctx); err != nil {
		return nil, err
	}
	return json.MarshalIndent(doc, "", "  ")
}
