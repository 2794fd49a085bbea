package mail

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/phrazzld/taskdesk/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.html templates/*.txt
var templateFS embed.FS

// Template names, one per email kind.
const (
	templateAssignment       = "assignment"
	templateStatusUpdate     = "status_update"
	templateDeadlineReminder = "deadline_reminder"
	templateBroadcast        = "broadcast"
)

// Display formats used in email bodies.
const (
	dateFormat     = "Mon, 02 Jan 2006"
	dateTimeFormat = "Mon, 02 Jan 2006 15:04 MST"
)

// view is the data every template renders.
type view struct {
	RecipientName string
	ActorName     string
	Heading       string
	Accent        string
	Link          string
	LinkLabel     string

	TaskTitle       string
	TaskDescription string
	BadgeLabel      string
	BadgeColor      string
	DueDate         string
	DueIn           string
	CompletedAt     string
	Reassigned      bool
	Paragraphs      []string
}

type renderer struct {
	html map[string]*htmltemplate.Template
	text map[string]*texttemplate.Template
}

func newRenderer() (*renderer, error) {
	r := &renderer{
		html: make(map[string]*htmltemplate.Template),
		text: make(map[string]*texttemplate.Template),
	}
	for _, name := range []string{templateAssignment, templateStatusUpdate, templateDeadlineReminder, templateBroadcast} {
		h, err := htmltemplate.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s html template: %w", name, err)
		}
		t, err := texttemplate.ParseFS(templateFS, "templates/"+name+".txt")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s text template: %w", name, err)
		}
		r.html[name] = h
		r.text[name] = t
	}
	return r, nil
}

// render executes both variants of the named template.
func (r *renderer) render(name string, v view) (text, html string, err error) {
	var hb, tb bytes.Buffer
	if err := r.html[name].ExecuteTemplate(&hb, "layout", v); err != nil {
		return "", "", fmt.Errorf("failed to render %s html: %w", name, err)
	}
	if err := r.text[name].Execute(&tb, v); err != nil {
		return "", "", fmt.Errorf("failed to render %s text: %w", name, err)
	}
	return tb.String(), hb.String(), nil
}

var titleCaser = cases.Title(language.English)

// Label turns an enum value such as IN_PROGRESS into "In Progress".
func Label(value string) string {
	return titleCaser.String(strings.ReplaceAll(strings.ToLower(value), "_", " "))
}

func priorityColor(p domain.TaskPriority) string {
	switch p {
	case domain.TaskPriorityUrgent:
		return "#dc3545"
	case domain.TaskPriorityHigh:
		return "#fd7e14"
	case domain.TaskPriorityMedium:
		return "#ffc107"
	case domain.TaskPriorityLow:
		return "#28a745"
	default:
		return "#6c757d"
	}
}

func statusColor(s domain.TaskStatus) string {
	switch s {
	case domain.TaskStatusCompleted:
		return "#28a745"
	case domain.TaskStatusInProgress:
		return "#007bff"
	case domain.TaskStatusPending:
		return "#ffc107"
	default:
		return "#6c757d"
	}
}

// DaysUntil counts calendar days in UTC from now to due. Past dates count
// as zero.
func DaysUntil(now, due time.Time) int {
	y, m, d := now.UTC().Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	y, m, d = due.UTC().Date()
	end := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	days := int(end.Sub(start).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func dueIn(days int) string {
	switch days {
	case 0:
		return "due today"
	case 1:
		return "due in 1 day"
	default:
		return fmt.Sprintf("due in %d days", days)
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(dateFormat)
}

func formatDateTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}

// paragraphs splits free text on blank lines.
func paragraphs(s string) []string {
	var out []string
	for _, p := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
