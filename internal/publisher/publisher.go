package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/domain"
)

// MailTypePlanResult 是排班结果邮件在 email_queue 中的类型
const MailTypePlanResult = "plan_result"

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Publisher struct {
	ch          channel
	resultQueue string
	mailQueue   string
	organizer   string
	timeout     time.Duration
}

func New(ch channel, resultQueue, mailQueue, organizer string, timeout time.Duration) *Publisher {
	return &Publisher{
		ch:          ch,
		resultQueue: resultQueue,
		mailQueue:   mailQueue,
		organizer:   organizer,
		timeout:     timeout,
	}
}

// PublishResult 把排班结果发布到结果队列，如果配置了组织者邮箱，再发送一封通知邮件
func (p *Publisher) PublishResult(ctx context.Context, result *domain.PlanResult, mailData *domain.PlanResultMailData) error {
	body, err := json.Marshal(result)
	if err != nil {
		return err
	}
	if err := p.publish(ctx, p.resultQueue, body); err != nil {
		return fmt.Errorf("无法发布排班结果: %w", err)
	}

	if p.organizer == "" || mailData == nil {
		return nil
	}

	mailBody, err := json.Marshal(domain.MailMessage{
		Type: MailTypePlanResult,
		To:   p.organizer,
		Data: mailData,
	})
	if err != nil {
		return err
	}
	if err := p.publish(ctx, p.mailQueue, mailBody); err != nil {
		return fmt.Errorf("无法发送排班结果邮件: %w", err)
	}

	return nil
}

func (p *Publisher) publish(ctx context.Context, queue string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	return p.ch.PublishWithContext(
		ctx,
		"",
		queue,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}
