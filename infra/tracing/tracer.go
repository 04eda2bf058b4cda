package tracing

import (
	"io"

	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
	jaegercfg "github.com/uber/jaeger-client-go/config"
)

type jaegerLogger struct{}

func (jaegerLogger) Error(msg string) {
	logrus.Error(msg)
}

func (jaegerLogger) Infof(msg string, args ...interface{}) {
	logrus.Debugf(msg, args...)
}

// InitGlobalTracer installs a jaeger tracer configured by the JAEGER_* variables.
// JAEGER_DISABLED=true yields a no-op tracer.
func InitGlobalTracer(serviceName string) (io.Closer, error) {
	cfg, err := jaegercfg.FromEnv()
	if err != nil {
		return nil, err
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = serviceName
	}
	tracer, closer, err := cfg.NewTracer(jaegercfg.Logger(jaegerLogger{}))
	if err != nil {
		return nil, err
	}
	opentracing.SetGlobalTracer(tracer)
	return closer, nil
}
