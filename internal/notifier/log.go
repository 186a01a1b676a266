package notifier

import (
	"log/slog"

	"github.com/amishk599/jobdesk/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes new job matches to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
	link   LinkFunc
}

// NewLogNotifier returns a notifier that logs each job via slog. link may be nil.
func NewLogNotifier(logger *slog.Logger, link LinkFunc) *LogNotifier {
	return &LogNotifier{logger: logger, link: link}
}

// Notify logs each job. Logging does not fail, so it always returns nil.
func (n *LogNotifier) Notify(jobs []model.Job) error {
	for _, j := range jobs {
		args := []any{"id", j.ID, "company", j.CompanyName, "title", j.Title, "location", j.Location}
		if salary := j.SalaryRange(); salary != "" {
			args = append(args, "salary", salary)
		}
		if n.link != nil {
			args = append(args, "url", n.link(j))
		}
		if j.PostedAt != nil {
			args = append(args, "posted_at", *j.PostedAt)
		}
		n.logger.Info("new job", args...)
	}
	return nil
}
