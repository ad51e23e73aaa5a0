package models

const (
	// HeaderUserID carries the acting user id on every request.
	HeaderUserID = "X-Sharer-User-Id"

	// DefaultPageSize размер страницы по умолчанию
	DefaultPageSize = 10

	// MaxPageSize верхняя граница размера страницы
	MaxPageSize = 100

	// DefaultExportMaxRows максимальное количество строк в выгрузке
	DefaultExportMaxRows = 5000
)
