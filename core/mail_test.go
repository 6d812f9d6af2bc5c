package core_test

import (
	"strings"
	"testing"

	"github.com/trezcool/amss/core"
	testutil "github.com/trezcool/amss/tests"
)

func TestEmailMessage_Render(t *testing.T) {
	core.ParseEmailTemplates(testutil.NopLogger{})

	conf := core.NewConfig()

	t.Run("every shipped template parses against the base layout", func(t *testing.T) {
		for _, name := range []string{"invitation", "password-reset"} {
			msg := core.EmailMessage{
				TemplateName: name,
				TemplateData: struct {
					Name     string
					Role     string
					Username string
					Password string
					UID      string
					Token    string
				}{"Jane Doe", "TEACHER", "jdoe", "s3cret", "dWlk", "tok123"},
			}
			if err := msg.Render(conf); err != nil {
				t.Fatalf("Render(%q) error = %v", name, err)
			}
			if !msg.HasContent() {
				t.Errorf("Render(%q) produced no content", name)
			}
		}
	})

	t.Run("invitation interpolates account details", func(t *testing.T) {
		msg := core.EmailMessage{
			TemplateName: "invitation",
			TemplateData: struct {
				Name     string
				Role     string
				Username string
				Password string
			}{"Jane Doe", "TEACHER", "jdoe", "s3cret"},
		}
		if err := msg.Render(conf); err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		for _, want := range []string{"Jane Doe", "jdoe", "s3cret", conf.AppName} {
			if !strings.Contains(msg.TextContent, want) {
				t.Errorf("Render() content missing %q:\n%s", want, msg.TextContent)
			}
		}
	})

	t.Run("unknown template errors", func(t *testing.T) {
		msg := core.EmailMessage{TemplateName: "nope"}
		if err := msg.Render(conf); err == nil {
			t.Error("Render() error = nil, want unknown template error")
		}
	})

	t.Run("plain body skips templating", func(t *testing.T) {
		msg := core.EmailMessage{BodyStr: "hello"}
		if err := msg.Render(conf); err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if msg.TextContent != "hello" {
			t.Errorf("Render() content = %q, want %q", msg.TextContent, "hello")
		}
	})
}
