// Package jobs corre el refresco programado de clientes sin compra sobre asynq.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault cola única del worker.
	QueueDefault = "default"
	// TaskRefreshTargets recalcula la instantánea de clientes sin compra.
	TaskRefreshTargets = "clientes:refresh"
)

// RefreshTargetsPayload origen del refresco (cron, manual...). Solo se loguea.
type RefreshTargetsPayload struct {
	Trigger string `json:"trigger"`
}

// NewRefreshTargetsTask construye la tarea. Sin reintentos: una corrida fallida
// deja la instantánea anterior y se espera al próximo disparo.
func NewRefreshTargetsTask(trigger string) (*asynq.Task, error) {
	data, err := json.Marshal(RefreshTargetsPayload{Trigger: trigger})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRefreshTargets, data, asynq.MaxRetry(0), asynq.Queue(QueueDefault)), nil
}
