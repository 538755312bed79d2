package listeners

import (
	"fmt"
	"io"
	"strings"

	mail "github.com/go-mail/mail/v2"

	"github.com/netresearch/chronos/core"
)

// MailConfig configures MailJobListener.
type MailConfig struct {
	SMTPHost          string
	SMTPPort          int
	SMTPUser          string
	SMTPPassword      string
	SMTPTLSSkipVerify bool
	EmailTo           string
	EmailFrom         string
	EmailSubject      string
	OnlyOnError       bool
}

// MailJobListener emails a notification after a job finishes, attaching the
// execution's captured diagnostic log.
type MailJobListener struct {
	core.BaseJobListener
	Config MailConfig
	dialer *mail.Dialer
}

var _ core.JobListener = (*MailJobListener)(nil)

// NewMailJobListener returns a listener dialing cfg.SMTPHost:SMTPPort.
func NewMailJobListener(cfg MailConfig) *MailJobListener {
	return &MailJobListener{
		Config: cfg,
		dialer: mail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
	}
}

func (l *MailJobListener) JobWasExecuted(ctx *core.JobContext, code core.CompletionCode, err error) {
	failed := code == core.CompletionExecutionThrewException
	if l.Config.OnlyOnError && !failed {
		return
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", l.from())
	msg.SetHeader("To", strings.Split(l.Config.EmailTo, ",")...)
	msg.SetHeader("Subject", l.subject(ctx, code))
	msg.SetBody("text/plain", l.body(ctx, code, err))

	if ctx.Execution.Log.TotalWritten() > 0 {
		base := fmt.Sprintf("%s_%s", ctx.JobKey, ctx.Execution.ID)
		logBytes := ctx.Execution.Log.Bytes()
		msg.Attach(base+".log", mail.SetCopyFunc(func(w io.Writer) error {
			_, werr := w.Write(logBytes)
			return werr
		}))
	}

	if l.dialer != nil {
		_ = l.dialer.DialAndSend(msg)
	}
}

func (l *MailJobListener) from() string {
	if l.Config.EmailFrom != "" {
		return l.Config.EmailFrom
	}
	return "chronos@localhost"
}

func (l *MailJobListener) subject(ctx *core.JobContext, code core.CompletionCode) string {
	if l.Config.EmailSubject != "" {
		return l.Config.EmailSubject
	}
	return fmt.Sprintf("[chronos] %s: %s", ctx.JobKey, code)
}

func (l *MailJobListener) body(ctx *core.JobContext, code core.CompletionCode, err error) string {
	if err != nil {
		return fmt.Sprintf("job %s (execution %s) completed %s: %v", ctx.JobKey, ctx.Execution.ID, code, err)
	}
	return fmt.Sprintf("job %s (execution %s) completed %s", ctx.JobKey, ctx.Execution.ID, code)
}
