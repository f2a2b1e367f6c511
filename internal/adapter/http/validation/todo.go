package validation

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"todoservice/internal/core/domain"
	"todoservice/internal/core/model/request"
)

var updatableFields = []string{"title", "description", "completed", "priority", "dueDate", "tags"}

func (v *Validator) CreateTodo(body []byte, locale string) (domain.CreateTodoInput, error) {
	c := newCollector(v.Translator(locale))

	fields, ok := decodeObject(body)
	if !ok {
		c.addRoot(msgNotObject)
		return domain.CreateTodoInput{}, c.err()
	}

	var req request.CreateTodoRequest

	if title, _ := c.readString(fields, "title"); title != nil {
		req.Title = *title
	}

	if description, _ := c.readString(fields, "description"); description != nil && *description != "" {
		req.Description = description
	}

	req.Completed = c.readNotNullBool(fields, "completed")
	req.Priority = c.readNotNullString(fields, "priority")
	req.DueDate, _ = c.readDate(fields, "dueDate")
	req.Tags, _ = c.readTags(fields, "tags")

	v.validateStruct(c, req)

	if err := c.err(); err != nil {
		return domain.CreateTodoInput{}, err
	}

	input := domain.CreateTodoInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
	}

	if req.Priority != nil {
		priority := domain.Priority(*req.Priority)
		input.Priority = &priority
	}

	return input, nil
}

func (v *Validator) UpdateTodo(body []byte, locale string) (domain.TodoPatch, error) {
	c := newCollector(v.Translator(locale))

	patch := v.readUpdate(c, body)

	if err := c.err(); err != nil {
		return domain.TodoPatch{}, err
	}

	return patch, nil
}

// UpdateRequest checks the path id and the payload of an update in one pass,
// so a bad id and a bad body are reported together.
func (v *Validator) UpdateRequest(id string, body []byte, locale string) (string, domain.TodoPatch, error) {
	c := newCollector(v.Translator(locale))

	normalized := v.readID(c, id)
	patch := v.readUpdate(c, body)

	if err := c.err(); err != nil {
		return "", domain.TodoPatch{}, err
	}

	return normalized, patch, nil
}

func (v *Validator) readUpdate(c *collector, body []byte) domain.TodoPatch {
	fields, ok := decodeObject(body)
	if !ok {
		c.addRoot(msgNotObject)
		return domain.TodoPatch{}
	}

	return v.readPatch(c, fields)
}

// readPatch decodes and checks an update payload. Violations land in c.
func (v *Validator) readPatch(c *collector, fields map[string]json.RawMessage) domain.TodoPatch {
	if !hasAny(fields, updatableFields) {
		c.addRoot(msgEmptyUpdate)
		return domain.TodoPatch{}
	}

	var req request.UpdateTodoRequest
	var patch domain.TodoPatch

	req.Title = c.readNotNullString(fields, "title")

	if description, present := c.readString(fields, "description"); present {
		patch.DescriptionSet = true
		if description != nil && *description != "" {
			req.Description = description
		}
	}

	req.Completed = c.readNotNullBool(fields, "completed")
	req.Priority = c.readNotNullString(fields, "priority")

	req.DueDate, patch.DueDateSet = c.readDate(fields, "dueDate")
	req.Tags, patch.TagsSet = c.readTags(fields, "tags")

	v.validateStruct(c, req)

	patch.Title = req.Title
	patch.Description = req.Description
	patch.Completed = req.Completed
	patch.DueDate = req.DueDate
	patch.Tags = req.Tags

	if req.Priority != nil {
		priority := domain.Priority(*req.Priority)
		patch.Priority = &priority
	}

	return patch
}

func (v *Validator) ListQuery(values url.Values, locale string) (domain.ListQuery, error) {
	c := newCollector(v.Translator(locale))
	defaults := domain.DefaultListQuery()

	req := request.ListTodosRequest{
		Page:      c.readInt(values, "page", defaults.Page),
		Limit:     c.readInt(values, "limit", defaults.Limit),
		Status:    readParam(values, "status", string(defaults.Status)),
		Priority:  readParam(values, "priority", ""),
		SortBy:    readParam(values, "sortBy", string(defaults.SortBy)),
		SortOrder: readParam(values, "sortOrder", string(defaults.SortOrder)),
		Search:    readParam(values, "search", ""),
		Tag:       readParam(values, "tag", ""),
	}

	v.validateStruct(c, req)

	if err := c.err(); err != nil {
		return domain.ListQuery{}, err
	}

	query := domain.ListQuery{
		Page:      req.Page,
		Limit:     req.Limit,
		Status:    domain.StatusFilter(req.Status),
		SortBy:    domain.SortField(req.SortBy),
		SortOrder: domain.SortOrder(req.SortOrder),
		Search:    req.Search,
		Tag:       req.Tag,
	}

	if req.Priority != "" {
		priority := domain.Priority(req.Priority)
		query.Priority = &priority
	}

	return query, nil
}

func (v *Validator) DueSoonDays(values url.Values, locale string) (int, error) {
	c := newCollector(v.Translator(locale))

	req := request.DueSoonRequest{Days: c.readInt(values, "days", domain.DefaultDueDays)}
	v.validateStruct(c, req)

	if err := c.err(); err != nil {
		return 0, err
	}

	return req.Days, nil
}

// TodoID checks the shape of a path id. A malformed id is a validation
// failure, never a missing todo.
func (v *Validator) TodoID(id string, locale string) (string, error) {
	c := newCollector(v.Translator(locale))

	normalized := v.readID(c, id)

	if err := c.err(); err != nil {
		return "", err
	}

	return normalized, nil
}

func (v *Validator) readID(c *collector, id string) string {
	req := request.TodoIDRequest{ID: strings.ToLower(strings.TrimSpace(id))}
	v.validateStruct(c, req)

	return req.ID
}

func (v *Validator) BulkDelete(body []byte, locale string) ([]string, error) {
	c := newCollector(v.Translator(locale))

	fields, ok := decodeObject(body)
	if !ok {
		c.addRoot(msgNotObject)
		return nil, c.err()
	}

	req := request.BulkIDsRequest{IDs: c.readIDs(fields, "ids")}
	v.validateStruct(c, req)

	if err := c.err(); err != nil {
		return nil, err
	}

	return req.IDs, nil
}

func (v *Validator) BulkUpdate(body []byte, locale string) ([]string, domain.TodoPatch, error) {
	c := newCollector(v.Translator(locale))

	fields, ok := decodeObject(body)
	if !ok {
		c.addRoot(msgNotObject)
		return nil, domain.TodoPatch{}, c.err()
	}

	req := request.BulkIDsRequest{IDs: c.readIDs(fields, "ids")}
	v.validateStruct(c, req)

	var patch domain.TodoPatch

	updateData, ok := decodeObject(fields["updateData"])
	if ok {
		nested := c.nested("updateData")
		patch = v.readPatch(nested, updateData)
		c.merge(nested)
	} else {
		c.add("updateData", msgRequiredObject)
	}

	if err := c.err(); err != nil {
		return nil, domain.TodoPatch{}, err
	}

	return req.IDs, patch, nil
}

func (c *collector) readNotNullString(fields map[string]json.RawMessage, name string) *string {
	if raw, ok := fields[name]; ok && isNull(raw) {
		c.add(name, msgNotNull)
		return nil
	}

	value, _ := c.readString(fields, name)
	return value
}

func (c *collector) readNotNullBool(fields map[string]json.RawMessage, name string) *bool {
	if raw, ok := fields[name]; ok && isNull(raw) {
		c.add(name, msgNotNull)
		return nil
	}

	value, _ := c.readBool(fields, name)
	return value
}

// readInt returns fallback when the parameter is missing or empty and records
// a violation when it is not an integer.
func (c *collector) readInt(values url.Values, name string, fallback int) int {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return fallback
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		c.add(name, msgInteger)
		return fallback
	}

	return n
}

func readParam(values url.Values, name string, fallback string) string {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return fallback
	}
	return raw
}

func hasAny(fields map[string]json.RawMessage, names []string) bool {
	for _, name := range names {
		if _, ok := fields[name]; ok {
			return true
		}
	}
	return false
}
