// Package advisor wraps the generative-AI helpers: lesson planning, progress
// reports, an academic Q&A assistant and resource auto-tagging.
package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/amss/core"
	"github.com/trezcool/amss/core/grade"
	"github.com/trezcool/amss/core/user"
)

// Client generates text from a prompt; the gemini-backed implementation lives
// in services/ai.
type Client interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type Service struct {
	client Client
}

func NewService(client Client) *Service {
	return &Service{client: client}
}

func (svc *Service) LessonPlan(ctx context.Context, actor user.User, subject, topic string) (string, error) {
	if !actor.HasRole(user.RolePrincipal, user.RoleTeacher) {
		return "", core.NewPermissionError("permission denied")
	}
	subject, topic = core.CleanString(subject), core.CleanString(topic)
	if subject == "" || topic == "" {
		return "", core.NewValidationError(errors.New("subject and topic are required"))
	}

	prompt := fmt.Sprintf(`Create a detailed lesson plan for teaching %s in %s. Include:
1. Learning Objectives
2. Materials Needed
3. Introduction (10 mins)
4. Main Content (30 mins)
5. Activities/Practice (15 mins)
6. Conclusion (5 mins)
7. Assessment Methods
8. Homework/Extension Activities

Make it practical and engaging for high school students.`, topic, subject)

	return svc.client.GenerateText(ctx, prompt)
}

func (svc *Service) ProgressReport(ctx context.Context, studentName string, grades []grade.Grade) (string, error) {
	if len(grades) == 0 {
		return "", core.NewValidationError(errors.New("no grades available for this student"))
	}

	lines := make([]string, 0, len(grades))
	for _, g := range grades {
		lines = append(lines, fmt.Sprintf("%s: %.0f%% (%s)", g.SubjectName, g.Total, g.Letter))
	}

	prompt := fmt.Sprintf(`Create a personalized progress report for student %s based on these grades:

%s

Include:
1. Overall Performance Summary
2. Strengths
3. Areas for Improvement
4. Specific Recommendations
5. Encouraging Message

Keep it professional, constructive, and motivating. Limit to 250 words.`, studentName, strings.Join(lines, "\n"))

	return svc.client.GenerateText(ctx, prompt)
}

func (svc *Service) Chat(ctx context.Context, question, extraContext string) (string, error) {
	question = core.CleanString(question)
	if question == "" {
		return "", core.NewValidationError(errors.New("question is required"))
	}

	var ctxLine string
	if extraContext != "" {
		ctxLine = "\nContext: " + extraContext
	}
	prompt := fmt.Sprintf(`You are an AI Academic Advisor for high school students. Answer the following question helpfully and encouragingly.%s

Student Question: %s

Provide a clear, helpful, and motivating response. Keep it concise (under 200 words).`, ctxLine, question)

	return svc.client.GenerateText(ctx, prompt)
}

// ResourceTags suggests up to 7 lowercase tags for a teaching resource.
func (svc *Service) ResourceTags(ctx context.Context, fileName, fileType string) ([]string, error) {
	prompt := fmt.Sprintf(`Generate 5-7 relevant tags for a teaching resource file named %q of type %q.
Return only the tags as a comma-separated list, no explanations.
Examples of good tags: mathematics, algebra, worksheets, grade10, geometry, practice-problems, etc.`, fileName, fileType)

	text, err := svc.client.GenerateText(ctx, prompt)
	if err != nil {
		return nil, err
	}

	parts := strings.Split(text, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if tag := strings.ToLower(strings.TrimSpace(p)); tag != "" {
			tags = append(tags, tag)
		}
	}
	if len(tags) > 7 {
		tags = tags[:7]
	}
	return tags, nil
}
