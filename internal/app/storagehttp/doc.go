// Package storagehttp реализует Storage API — HTTP-интерфейс узла хранения, принимающего и
// выдающего чанки передач поверх локального диска. Основные эндпоинты:
//   - PUT /chunks/{transferID}/{idx} — принимает чанк, проверяет размер/хеш и сохраняет вместе с meta.json.
//   - GET /chunks/{transferID}/{idx} — отдаёт сохранённый чанк как application/octet-stream.
//   - HEAD /chunks/{transferID}/{idx} — возвращает размер и SHA-256 через служебные заголовки.
//   - POST /transfers/{transferID}/finalize — проверяет полноту набора чанков и закрывает передачу.
//   - GET /transfers/{transferID}/meta — отдаёт метаданные завершённой передачи.
//   - POST /admin/gc — инициирует сбор незавершённых передач (ручной GC).
//   - GET /health — отдаёт агрегированные метрики по каталогу данных для health-check'ов.
package storagehttp
