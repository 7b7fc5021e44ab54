package store

var runColumns = []string{
	"id",
	"base",
	"terms",
	"workers",
	"mechanism",
	"status",
	"total",
	"completed",
	"failed",
	"error",
	"iterations",
	"spawned",
	"max_live",
	"created_at",
	"finished_at",
}

var termColumns = []string{
	"run_id",
	"term",
	"slot",
	"value",
	"error",
}

const queryDeleteTerms = `DELETE FROM run_terms WHERE run_id = ?`
