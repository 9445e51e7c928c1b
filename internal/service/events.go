package service

import (
	"encoding/json"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"github.com/pixel-yerzat/banking-superapp/internal/model"
)

const (
	subjectTransactionCompleted = "transactions.completed"
	subjectTransactionCancelled = "transactions.cancelled"
)

// EventPublisher публикует события о транзакциях в NATS после коммита.
// Публикация — best effort: ошибка брокера логируется и не влияет на
// результат операции. При nil-соединении публикация молча пропускается,
// ядро работает и без брокера.
type EventPublisher struct {
	nc     *nats.Conn
	logger *logrus.Logger
}

func NewEventPublisher(nc *nats.Conn, logger *logrus.Logger) *EventPublisher {
	return &EventPublisher{nc: nc, logger: logger}
}

func (p *EventPublisher) publish(subject string, transaction *model.Transaction) {
	if p == nil || p.nc == nil {
		return
	}

	payload, err := json.Marshal(transaction)
	if err != nil {
		p.logger.WithError(err).Error("Ошибка сериализации события транзакции")
		return
	}

	if err := p.nc.Publish(subject, payload); err != nil {
		p.logger.WithError(err).WithField("subject", subject).Warn("Не удалось опубликовать событие в NATS")
		return
	}

	p.logger.WithFields(logrus.Fields{
		"subject":   subject,
		"reference": transaction.Reference,
	}).Debug("Событие транзакции опубликовано")
}

func (p *EventPublisher) PublishTransactionCompleted(transaction *model.Transaction) {
	p.publish(subjectTransactionCompleted, transaction)
}

func (p *EventPublisher) PublishTransactionCancelled(transaction *model.Transaction) {
	p.publish(subjectTransactionCancelled, transaction)
}
