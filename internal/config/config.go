package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Planner     struct {
		PopulationSize int   `env:"POPULATION_SIZE" envDefault:"1000"`
		Workers        int   `env:"WORKERS" envDefault:"0"` // 0 表示使用 GOMAXPROCS
		Seed           int64 `env:"SEED" envDefault:"0"`    // 0 表示使用当前时间
		ReportInterval int   `env:"REPORT_INTERVAL" envDefault:"1"`
		MaxGenerations int   `env:"MAX_GENERATIONS" envDefault:"0"` // 0 表示一直运行直到被中断
	} `envPrefix:"PLANNER_"`
	Status struct {
		Addr            string `env:"ADDR"` // 为空时不启动状态服务
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"STATUS_"`
	Database struct {
		DSN                string `env:"DSN"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	Redis struct {
		Addr             string `env:"ADDR"` // 为空时不写入 redis
		Password         string `env:"PASSWORD"`
		DB               int    `env:"DB" envDefault:"0"`
		StatusKey        string `env:"STATUS_KEY" envDefault:"workshop_planner_status"`
		StatusExpiration int    `env:"STATUS_EXPIRATION" envDefault:"600"`
		OperationTimeout int    `env:"OPERATION_TIMEOUT" envDefault:"2"`
	} `envPrefix:"REDIS_"`
	RabbitMQ struct {
		DSN            string `env:"DSN"` // 为空时不发布结果
		ResultQueue    string `env:"RESULT_QUEUE" envDefault:"plan_result_queue"`
		MailQueue      string `env:"MAIL_QUEUE" envDefault:"email_queue"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Email struct {
		Organizer    string `env:"ORGANIZER"` // 接收排班结果邮件的组织者
		TemplatePath string `env:"TEMPLATE_PATH" envDefault:"./templates/plan_result_email.html"`
		SMTP         struct {
			Username    string `env:"USERNAME"`
			Password    string `env:"PASSWORD"`
			Host        string `env:"HOST"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	return cfg, nil
}
