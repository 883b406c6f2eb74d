package ipc

import (
	"github.com/matjam/deskpaper/internal/wallpaper"
)

type ManagerInterface interface {
	Status() wallpaper.Status
	Refresh() error
	Stop()
}

type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type StatusResponse struct {
	Status    string           `json:"status"`
	Message   string           `json:"message"`
	Version   string           `json:"version"`
	PID       int              `json:"pid"`
	Socket    string           `json:"socket"`
	Wallpaper wallpaper.Status `json:"wallpaper"`
}
