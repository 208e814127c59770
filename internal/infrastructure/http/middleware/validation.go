package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/go-chi/chi/v5"

	"github.com/rezkam/todolist/internal/infrastructure/http/response"
)

// RequestValidator checks requests against the operations of an OpenAPI
// document before they reach a handler.
type RequestValidator struct {
	doc  *openapi3.T
	opts *openapi3filter.Options
}

// NewRequestValidator returns a validator that reports every problem in a
// request rather than the first.
func NewRequestValidator(doc *openapi3.T) *RequestValidator {
	return &RequestValidator{
		doc: doc,
		opts: &openapi3filter.Options{
			MultiError:          true,
			AuthenticationFunc:  openapi3filter.NoopAuthenticationFunc,
			SkipSettingDefaults: true,
		},
	}
}

// Operation validates requests routed to the document path template, such
// as "/lists/{id}". It must be mounted on a chi route so path parameters are
// already resolved. Methods the document does not describe pass through.
func (v *RequestValidator) Operation(path string) func(http.Handler) http.Handler {
	item := v.doc.Paths.Value(path)
	if item == nil {
		panic("middleware: path not in OpenAPI document: " + path)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			op := item.GetOperation(r.Method)
			if op == nil {
				next.ServeHTTP(w, r)
				return
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams(r),
				Route: &routers.Route{
					Spec:      v.doc,
					Path:      path,
					PathItem:  item,
					Method:    r.Method,
					Operation: op,
				},
				Options: v.opts,
			}

			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				details := validationDetails(err)
				slog.WarnContext(r.Context(), "request validation failed",
					"path", r.URL.Path,
					"method", r.Method,
					"operation", op.OperationID,
					"invalid_field_count", len(details),
					"error", err.Error())
				response.ValidationError(w, details...)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func pathParams(r *http.Request) map[string]string {
	params := map[string]string{}
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return params
	}
	for i, key := range rctx.URLParams.Keys {
		if key == "*" || i >= len(rctx.URLParams.Values) {
			continue
		}
		params[key] = rctx.URLParams.Values[i]
	}
	return params
}

// validationDetails flattens kin-openapi errors into field/issue pairs.
func validationDetails(err error) []response.ErrorField {
	var out []response.ErrorField
	collectDetails(err, "", &out)
	if len(out) == 0 {
		out = append(out, response.ErrorField{Field: "request", Issue: err.Error()})
	}
	return out
}

func collectDetails(err error, field string, out *[]response.ErrorField) {
	switch e := err.(type) {
	case openapi3.MultiError:
		for _, inner := range e {
			collectDetails(inner, field, out)
		}
	case *openapi3filter.RequestError:
		switch {
		case e.Parameter != nil:
			field = e.Parameter.Name
		case e.RequestBody != nil && field == "":
			field = "body"
		}
		if e.Err == nil {
			*out = append(*out, response.ErrorField{Field: orDefault(field, "request"), Issue: e.Reason})
			return
		}
		collectDetails(e.Err, field, out)
	case *openapi3.SchemaError:
		if ptr := e.JSONPointer(); len(ptr) > 0 {
			field = strings.Join(ptr, ".")
		}
		*out = append(*out, response.ErrorField{Field: orDefault(field, "body"), Issue: e.Reason})
	default:
		*out = append(*out, response.ErrorField{Field: orDefault(field, "request"), Issue: err.Error()})
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
