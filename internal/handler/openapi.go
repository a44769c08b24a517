package handler

import (
	_ "embed"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/deppfellow/pixelmags/internal/config"
	"github.com/deppfellow/pixelmags/internal/model"
	"github.com/deppfellow/pixelmags/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed static/openapi.html
var openAPIUI string

var recordTypes = map[model.Kind]model.Record{
	model.KindCustomer:         &model.Customer{},
	model.KindDevice:           &model.Device{},
	model.KindIssue:            &model.Issue{},
	model.KindLog:              &model.Log{},
	model.KindMagazine:         &model.Magazine{},
	model.KindPublisher:        &model.Publisher{},
	model.KindPurchase:         &model.Purchase{},
	model.KindSubscriptionPlan: &model.SubscriptionPlan{},
}

// OpenAPIHandler serves the API reference UI and the OpenAPI document it
// renders. The document is generated from the entity kinds at startup.
type OpenAPIHandler struct {
	Handler
	document map[string]interface{}
}

func NewOpenAPIHandler(s *server.Server) *OpenAPIHandler {
	return &OpenAPIHandler{
		Handler:  NewHandler(s),
		document: OpenAPIDocument(),
	}
}

func (h *OpenAPIHandler) ServeOpenAPIUI(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "no-cache")
	return c.HTML(http.StatusOK, openAPIUI)
}

func (h *OpenAPIHandler) ServeOpenAPIDocument(c echo.Context) error {
	return c.JSON(http.StatusOK, h.document)
}

// schemaName turns "subscription-plan" into "SubscriptionPlan".
func schemaName(kind model.Kind) string {
	return strings.ReplaceAll(cases.Title(language.English).String(strings.ReplaceAll(kind.String(), "-", " ")), " ", "")
}

// OpenAPIDocument describes every entity resource under /api/v1.
func OpenAPIDocument() map[string]interface{} {
	paths := map[string]interface{}{}
	schemas := map[string]interface{}{
		"Error": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"code":     map[string]interface{}{"type": "string"},
				"message":  map[string]interface{}{"type": "string"},
				"status":   map[string]interface{}{"type": "integer"},
				"override": map[string]interface{}{"type": "boolean"},
				"errors":   map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "object"}},
			},
		},
	}

	for _, kind := range model.Kinds {
		name := schemaName(kind)
		schemas[name] = recordSchema(reflect.TypeOf(recordTypes[kind]))

		ref := map[string]interface{}{"$ref": "#/components/schemas/" + name}
		list := map[string]interface{}{"type": "array", "items": ref}
		tag := []string{name}
		collection := "/api/v1/" + kind.Plural()

		paths[collection] = map[string]interface{}{
			"get":  operation(tag, "List "+kind.Plural(), list, queryParam("filter", "Named relationship filter")),
			"post": withBody(operation(tag, "Create a "+kind.String(), ref), ref, http.StatusCreated),
			"put":  withBody(operation(tag, "Update a "+kind.String(), ref), ref, http.StatusOK),
		}
		paths[collection+"/{id}"] = map[string]interface{}{
			"get":    operation(tag, "Get a "+kind.String(), ref, idParam()),
			"delete": noContent(operation(tag, "Delete a "+kind.String(), nil, idParam())),
		}
		paths["/api/v1/_search/"+kind.Plural()] = map[string]interface{}{
			"get": operation(tag, "Search "+kind.Plural(), list,
				queryParam("query", "Query string; blank returns no results"),
				queryParam("page", "Zero-based page"),
				queryParam("size", "Page size"),
			),
		}
	}

	return map[string]interface{}{
		"openapi": "3.0.3",
		"info": map[string]interface{}{
			"title":   config.ServiceName,
			"version": "1.0.0",
		},
		"paths": paths,
		"components": map[string]interface{}{
			"schemas": schemas,
		},
	}
}

func operation(tags []string, summary string, response map[string]interface{}, params ...map[string]interface{}) map[string]interface{} {
	errorRef := map[string]interface{}{"$ref": "#/components/schemas/Error"}
	responses := map[string]interface{}{
		"default": jsonContent("Error", errorRef),
	}
	if response != nil {
		responses["200"] = jsonContent("OK", response)
	}

	op := map[string]interface{}{
		"tags":      tags,
		"summary":   summary,
		"responses": responses,
	}
	if len(params) > 0 {
		op["parameters"] = params
	}
	return op
}

func withBody(op map[string]interface{}, schema map[string]interface{}, status int) map[string]interface{} {
	op["requestBody"] = map[string]interface{}{
		"required": true,
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{"schema": schema},
		},
	}
	responses := op["responses"].(map[string]interface{})
	if status != http.StatusOK {
		responses[statusKey(status)] = responses["200"]
		delete(responses, "200")
	}
	return op
}

func noContent(op map[string]interface{}) map[string]interface{} {
	op["responses"].(map[string]interface{})["204"] = map[string]interface{}{"description": "No Content"}
	return op
}

func statusKey(status int) string {
	switch status {
	case http.StatusCreated:
		return "201"
	case http.StatusNoContent:
		return "204"
	default:
		return "200"
	}
}

func jsonContent(description string, schema map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"description": description,
		"content": map[string]interface{}{
			"application/json": map[string]interface{}{"schema": schema},
		},
	}
}

func idParam() map[string]interface{} {
	return map[string]interface{}{
		"name":     "id",
		"in":       "path",
		"required": true,
		"schema":   map[string]interface{}{"type": "integer", "format": "int64"},
	}
}

func queryParam(name, description string) map[string]interface{} {
	return map[string]interface{}{
		"name":        name,
		"in":          "query",
		"description": description,
		"schema":      map[string]interface{}{"type": "string"},
	}
}

var (
	timeType    = reflect.TypeOf(time.Time{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
)

// recordSchema builds an object schema from the json tags of a record type.
func recordSchema(t reflect.Type) map[string]interface{} {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	properties := map[string]interface{}{}
	var required []string
	collectProperties(t, properties, &required)

	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func collectProperties(t reflect.Type, properties map[string]interface{}, required *[]string) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous {
			collectProperties(field.Type, properties, required)
			continue
		}

		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}

		schema := fieldSchema(field.Type)
		for _, rule := range strings.Split(field.Tag.Get("validate"), ",") {
			switch {
			case rule == "required":
				*required = append(*required, name)
			case strings.HasPrefix(rule, "oneof="):
				schema["enum"] = strings.Fields(strings.TrimPrefix(rule, "oneof="))
			}
		}
		properties[name] = schema
	}
}

func fieldSchema(t reflect.Type) map[string]interface{} {
	nullable := false
	if t.Kind() == reflect.Pointer {
		nullable = true
		t = t.Elem()
	}

	var schema map[string]interface{}
	switch {
	case t == timeType:
		schema = map[string]interface{}{"type": "string", "format": "date-time"}
	case t == decimalType:
		schema = map[string]interface{}{"type": "number"}
	case t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8:
		schema = map[string]interface{}{"type": "string", "format": "byte"}
	case t.Kind() == reflect.Int64:
		schema = map[string]interface{}{"type": "integer", "format": "int64"}
	case t.Kind() == reflect.Int:
		schema = map[string]interface{}{"type": "integer"}
	case t.Kind() == reflect.Bool:
		schema = map[string]interface{}{"type": "boolean"}
	default:
		schema = map[string]interface{}{"type": "string"}
	}

	if nullable {
		schema["nullable"] = true
	}
	return schema
}
