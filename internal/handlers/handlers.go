package handlers

import (
	"github.com/tupyy/expsum/internal/services"
)

type Handler struct {
	runSrv *services.RunService
}

func New(runSrv *services.RunService) *Handler {
	return &Handler{
		runSrv: runSrv,
	}
}
