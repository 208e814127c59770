// Package openapi builds the OpenAPI 3 description of the HTTP API and serves
// it as JSON, YAML and a Swagger UI page.
package openapi

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/rezkam/todolist/internal/application/pagination"
	"github.com/rezkam/todolist/internal/domain"
)

// Version of the API surface, also used as the route prefix.
const (
	Version  = "v1"
	BasePath = "/api/" + Version
)

// Document path templates, relative to BasePath.
const (
	PathLists     = "/lists"
	PathList      = "/lists/{id}"
	PathListItems = "/lists/{listId}/items"
	PathItems     = "/items"
	PathItem      = "/items/{id}"
)

func describe(s *openapi3.Schema, description string) *openapi3.Schema {
	s.Description = description
	return s
}

func schemaRef(name string, s *openapi3.Schema) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef("#/components/schemas/"+name, s)
}

type schemas struct {
	list, item, listPage, itemPage, errorResponse *openapi3.SchemaRef
}

func buildSchemas() schemas {
	id := describe(openapi3.NewInt64Schema(), "Store-assigned identifier")

	list := openapi3.NewObjectSchema().
		WithProperty("id", id).
		WithProperty("title", openapi3.NewStringSchema().WithMinLength(1).WithMaxLength(domain.MaxListTitleLength)).
		WithProperty("description", openapi3.NewStringSchema().WithMaxLength(domain.MaxListDescriptionLength).WithNullable())
	list.Required = []string{"title"}

	item := openapi3.NewObjectSchema().
		WithProperty("id", id).
		WithProperty("title", openapi3.NewStringSchema().WithMinLength(1).WithMaxLength(domain.MaxItemTitleLength)).
		WithProperty("content", openapi3.NewStringSchema().WithMinLength(1).WithMaxLength(domain.MaxItemContentLength)).
		WithProperty("dueDate", describe(openapi3.NewStringSchema(), "Calendar day, YYYY-MM-DD")).
		WithProperty("done", openapi3.NewBoolSchema()).
		WithProperty("listId", describe(openapi3.NewInt64Schema().WithMin(1), "Owning list"))
	item.Required = []string{"title", "content", "dueDate", "listId"}

	listRef := schemaRef("List", list)
	itemRef := schemaRef("Item", item)

	page := func(data *openapi3.SchemaRef) *openapi3.Schema {
		arr := openapi3.NewArraySchema()
		arr.Items = data
		s := openapi3.NewObjectSchema().
			WithProperty("pageIndex", openapi3.NewIntegerSchema()).
			WithProperty("pageSize", openapi3.NewIntegerSchema()).
			WithProperty("totalCount", openapi3.NewIntegerSchema()).
			WithPropertyRef("data", arr.NewRef())
		s.Required = []string{"pageIndex", "pageSize", "totalCount", "data"}
		return s
	}

	field := openapi3.NewObjectSchema().
		WithProperty("field", openapi3.NewStringSchema()).
		WithProperty("issue", openapi3.NewStringSchema())
	detail := openapi3.NewObjectSchema().
		WithProperty("code", openapi3.NewStringSchema()).
		WithProperty("message", openapi3.NewStringSchema()).
		WithProperty("details", openapi3.NewArraySchema().WithItems(field))
	errorResponse := openapi3.NewObjectSchema().WithProperty("error", detail)

	return schemas{
		list:          listRef,
		item:          itemRef,
		listPage:      schemaRef("ListPage", page(listRef)),
		itemPage:      schemaRef("ItemPage", page(itemRef)),
		errorResponse: schemaRef("ErrorResponse", errorResponse),
	}
}

func jsonResponse(description string, ref *openapi3.SchemaRef) *openapi3.ResponseRef {
	return &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription(description).WithJSONSchemaRef(ref)}
}

func emptyResponse(description string) *openapi3.ResponseRef {
	return &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription(description)}
}

func responses(pairs map[int]*openapi3.ResponseRef) *openapi3.Responses {
	opts := make([]openapi3.NewResponsesOption, 0, len(pairs))
	for code, ref := range pairs {
		opts = append(opts, openapi3.WithStatus(code, ref))
	}
	return openapi3.NewResponses(opts...)
}

func param(p *openapi3.Parameter) *openapi3.ParameterRef {
	return &openapi3.ParameterRef{Value: p}
}

func body(ref *openapi3.SchemaRef) *openapi3.RequestBodyRef {
	return &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(ref)}
}

func pagingParams() openapi3.Parameters {
	return openapi3.Parameters{
		param(openapi3.NewQueryParameter("pageIndex").
			WithDescription("1-based page number").
			WithSchema(openapi3.NewIntegerSchema().WithDefault(pagination.DefaultPageIndex))),
		param(openapi3.NewQueryParameter("pageSize").
			WithDescription("Page size, clamped to the configured maximum").
			WithSchema(openapi3.NewIntegerSchema().WithDefault(pagination.DefaultPageSize))),
	}
}

// crudPaths describes the five operations of one resource family.
func crudPaths(paths *openapi3.Paths, s schemas, tag, collection, member string, shape, page *openapi3.SchemaRef, filters openapi3.Parameters) {
	idParam := param(openapi3.NewPathParameter("id").WithSchema(openapi3.NewInt64Schema()))
	errRef := s.errorResponse

	coll := paths.Value(collection)
	if coll == nil {
		coll = &openapi3.PathItem{}
		paths.Set(collection, coll)
	}
	if page != nil {
		coll.Get = &openapi3.Operation{
			OperationID: "list" + tag,
			Summary:     "List " + tag + " ordered by title",
			Tags:        []string{tag},
			Parameters:  append(filters, pagingParams()...),
			Responses: responses(map[int]*openapi3.ResponseRef{
				http.StatusOK:         jsonResponse("One page of results", page),
				http.StatusBadRequest: jsonResponse("Invalid query", errRef),
			}),
		}
	}
	coll.Post = &openapi3.Operation{
		OperationID: "create" + tag,
		Summary:     "Create one of " + tag,
		Tags:        []string{tag},
		RequestBody: body(shape),
		Responses: responses(map[int]*openapi3.ResponseRef{
			http.StatusCreated:    jsonResponse("Created; Location points at the new resource", shape),
			http.StatusBadRequest: jsonResponse("Validation failed", errRef),
		}),
	}

	paths.Set(member, &openapi3.PathItem{
		Parameters: openapi3.Parameters{idParam},
		Get: &openapi3.Operation{
			OperationID: "get" + tag,
			Tags:        []string{tag},
			Responses: responses(map[int]*openapi3.ResponseRef{
				http.StatusOK:       jsonResponse("Found", shape),
				http.StatusNotFound: jsonResponse("No such id", errRef),
			}),
		},
		Put: &openapi3.Operation{
			OperationID: "update" + tag,
			Summary:     "Replace; the body id must equal the path id",
			Tags:        []string{tag},
			RequestBody: body(shape),
			Responses: responses(map[int]*openapi3.ResponseRef{
				http.StatusNoContent:  emptyResponse("Updated"),
				http.StatusBadRequest: jsonResponse("Validation failed or id mismatch", errRef),
				http.StatusNotFound:   jsonResponse("No such id", errRef),
			}),
		},
		Delete: &openapi3.Operation{
			OperationID: "delete" + tag,
			Tags:        []string{tag},
			Responses: responses(map[int]*openapi3.ResponseRef{
				http.StatusOK:       jsonResponse("Deleted; returns what was removed", shape),
				http.StatusNotFound: jsonResponse("No such id", errRef),
			}),
		},
	})
}

// NewDocument builds the API description. Every call returns a fresh value.
func NewDocument() *openapi3.T {
	s := buildSchemas()
	paths := openapi3.NewPaths()

	crudPaths(paths, s, "Lists", PathLists, PathList, s.list, s.listPage, openapi3.Parameters{
		param(openapi3.NewQueryParameter("title").
			WithDescription("Substring of the trimmed title, case-sensitive").
			WithSchema(openapi3.NewStringSchema())),
	})
	crudPaths(paths, s, "Items", PathItems, PathItem, s.item, nil, nil)

	paths.Set(PathListItems, &openapi3.PathItem{
		Get: &openapi3.Operation{
			OperationID: "listItemsOfList",
			Summary:     "List the items of one list ordered by title",
			Tags:        []string{"Items"},
			Parameters: append(openapi3.Parameters{
				param(openapi3.NewPathParameter("listId").WithSchema(openapi3.NewInt64Schema())),
				param(openapi3.NewQueryParameter("title").
					WithDescription("Substring of the trimmed title, case-sensitive").
					WithSchema(openapi3.NewStringSchema())),
				param(openapi3.NewQueryParameter("isComplete").WithSchema(openapi3.NewBoolSchema())),
				param(openapi3.NewQueryParameter("date").
					WithDescription("Due day, YYYY-MM-DD").
					WithSchema(openapi3.NewStringSchema())),
			}, pagingParams()...),
			Responses: responses(map[int]*openapi3.ResponseRef{
				http.StatusOK:         jsonResponse("One page of results", s.itemPage),
				http.StatusBadRequest: jsonResponse("Invalid query", s.errorResponse),
				http.StatusNotFound:   jsonResponse("The list has no items", s.errorResponse),
			}),
		},
	})

	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "Todo List API",
			Description: "Lists and the items they own.",
			Version:     Version,
		},
		Servers: openapi3.Servers{{URL: BasePath}},
		Paths:   paths,
		Components: &openapi3.Components{
			// Components hold the definitions; everything else points at them.
			Schemas: openapi3.Schemas{
				"List":          s.list.Value.NewRef(),
				"Item":          s.item.Value.NewRef(),
				"ListPage":      s.listPage.Value.NewRef(),
				"ItemPage":      s.itemPage.Value.NewRef(),
				"ErrorResponse": s.errorResponse.Value.NewRef(),
			},
		},
	}
}
