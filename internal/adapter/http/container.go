package http

import (
	"todoservice/internal/adapter/database"
	"todoservice/internal/adapter/database/repository"
	"todoservice/internal/adapter/http/handler"
	"todoservice/internal/adapter/http/helper"
	"todoservice/internal/adapter/http/validation"
	"todoservice/internal/adapter/i18n"
	"todoservice/internal/adapter/logger"
	"todoservice/internal/config"
	"todoservice/internal/core/port"
	"todoservice/internal/core/service"
)

type Container struct {
	TodoRepo    port.TodoRepository
	TodoService port.TodoService

	Translator *i18n.Translator
	Responder  *helper.Responder

	TodoHandler   *handler.TodoHandler
	HealthHandler *handler.HealthHandler
}

func NewContainer(db *database.DB, cfg *config.Config, logger *logger.LokiLogger, recorder port.Telemetry) (*Container, error) {
	translator, err := i18n.NewTranslator()
	if err != nil {
		return nil, err
	}

	todoRepo := repository.NewTodoRepository(db, recorder)
	todoSvc := service.NewTodoService(todoRepo, recorder)

	responder := helper.NewResponder(logger, translator, cfg.IsProduction())

	return &Container{
		TodoRepo:    todoRepo,
		TodoService: todoSvc,

		Translator: translator,
		Responder:  responder,

		TodoHandler:   handler.NewTodoHandler(todoSvc, validation.New(), responder),
		HealthHandler: handler.NewHealthHandler(db, responder, cfg.ServiceVersion, cfg.Environment),
	}, nil
}
