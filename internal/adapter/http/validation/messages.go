package validation

const (
	msgNotPast        = "notpast"
	msgNotObject      = "not_object"
	msgNotNull        = "not_null"
	msgString         = "type_string"
	msgBoolean        = "type_boolean"
	msgInteger        = "type_integer"
	msgStringArray    = "type_string_array"
	msgDate           = "type_date"
	msgEmptyUpdate    = "empty_update"
	msgRequiredObject = "required_object"
)

var englishMessages = map[string]string{
	msgNotPast:        "{0} must not be in the past",
	msgNotObject:      "request body must be a JSON object",
	msgNotNull:        "{0} cannot be null",
	msgString:         "{0} must be a string",
	msgBoolean:        "{0} must be a boolean",
	msgInteger:        "{0} must be an integer",
	msgStringArray:    "{0} must be an array of strings",
	msgDate:           "{0} must be a valid date-time",
	msgEmptyUpdate:    "at least one field must be provided",
	msgRequiredObject: "{0} must be an object",
}

var portugueseMessages = map[string]string{
	msgNotPast:        "{0} não pode estar no passado",
	msgNotObject:      "o corpo da requisição deve ser um objeto JSON",
	msgNotNull:        "{0} não pode ser nulo",
	msgString:         "{0} deve ser um texto",
	msgBoolean:        "{0} deve ser um booleano",
	msgInteger:        "{0} deve ser um número inteiro",
	msgStringArray:    "{0} deve ser uma lista de textos",
	msgDate:           "{0} deve ser uma data válida",
	msgEmptyUpdate:    "pelo menos um campo deve ser informado",
	msgRequiredObject: "{0} deve ser um objeto",
}
