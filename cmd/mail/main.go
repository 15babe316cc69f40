package main

import (
	"context"
	"encoding/json"
	"html/template"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/config"
	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/publisher"
	"github.com/wneessen/go-mail"
)

func main() {
	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	/**********************************************
	 * 读取配置文件
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		return
	}
	if cfg.Email.SMTP.Host == "" || cfg.RabbitMQ.DSN == "" {
		logger.Error("未配置 EMAIL_SMTP_HOST 或 RABBITMQ_DSN")
		return
	}

	// 模板在启动时解析一次，格式错误时直接退出
	tmpl, err := template.ParseFiles(cfg.Email.TemplatePath)
	if err != nil {
		logger.Error("无法解析邮件模板", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * 创建邮件客户端
	 **********************************************/
	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		logger.Error("无法创建邮件客户端", slog.String("error", err.Error()))
		return
	}
	defer client.Close()

	// 验证邮件客户端是否连接成功
	clientDialCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancel()
	if err := client.DialWithContext(clientDialCtx); err != nil {
		logger.Error("无法连接到邮件服务器", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * 连接 RabbitMQ
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("无法连接到 RabbitMQ", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("无法创建通道", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		cfg.RabbitMQ.MailQueue, // 队列名称
		true,                   // 是否持久化
		false,                  // 是否自动删除
		false,                  // 是否独占
		false,                  // 是否不等待
		nil,                    // 额外参数
	)
	if err != nil {
		logger.Error("无法声明队列", slog.String("error", err.Error()))
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	msgs, err := ch.Consume(
		q.Name, // 队列
		"",     // 消费者标识，由 RabbitMQ 自动分配
		false,  // 手动确认
		false,  // 是否独占队列
		false,  // RabbitMQ 不支持 no-local
		false,  // 是否不等待
		nil,    // 额外参数
	)
	if err != nil {
		logger.Error("无法消费消息", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Error("消息通道已关闭")
					return
				}
				logger.Info("收到消息", slog.Int("size", len(msg.Body)))

				mailMessage := domain.MailMessage{}
				if err := json.Unmarshal(msg.Body, &mailMessage); err != nil {
					logger.Error("邮件信息反序列化失败", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				m := mail.NewMsg()
				if err := m.From(cfg.Email.SMTP.Username); err != nil {
					logger.Error("无法设置邮件发件人", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}
				if err := m.To(mailMessage.To); err != nil {
					logger.Error("无法设置邮件收件人", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				switch mailMessage.Type {
				case publisher.MailTypePlanResult:
					if err := m.SetBodyHTMLTemplate(tmpl, mailMessage.Data); err != nil {
						logger.Error("无法设置邮件正文", slog.String("error", err.Error()))
						_ = msg.Nack(false, false)
						continue
					}
					m.Subject("工作坊排班结果")
				default:
					logger.Error("不支持的邮件类型", slog.String("type", mailMessage.Type))
					_ = msg.Nack(false, false)
					continue
				}

				if err := client.DialAndSend(m); err != nil {
					logger.Error("邮件发送失败", slog.String("error", err.Error()))
					_ = msg.Nack(false, true) // 将消息重新入队
					continue
				}

				_ = msg.Ack(false)
			}
		}
	}()

	logger.Info("等待消息...（按 CTRL+C 退出）")
	<-sigChan

	logger.Info("正在关闭 mail worker...")
	cancel()
	wg.Wait()
	logger.Info("mail worker 已成功关闭")
}
