package schedulesvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/attendance"
	"github.com/trezcool/kelasi/core/lesson"
)

// Client talks to the Course/Schedule Service REST API.
// It never retries: a failed call surfaces as a core.RemoteError and retry policy belongs to the caller.
type Client struct {
	baseURL string
	token   string
	http    *rest.Client
	logger  core.Logger
}

var (
	_ lesson.Repository     = (*Client)(nil)
	_ attendance.Repository = (*Client)(nil)
)

func NewClient(conf *core.Config, logger core.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(conf.Schedule.BaseURL, "/"),
		token:   conf.Schedule.Token,
		http:    &rest.Client{HTTPClient: &http.Client{Timeout: conf.Schedule.Timeout}},
		logger:  logger,
	}
}

type tokenKey struct{}

// WithToken makes the calls done with ctx authenticate with the acting user's token
// instead of the configured service token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func (c *Client) tokenFor(ctx context.Context) string {
	if token, ok := ctx.Value(tokenKey{}).(string); ok && token != "" {
		return token
	}
	return c.token
}

type remoteMessage struct {
	Error string `json:"error"`
}

// send performs one call. body (if any) is JSON encoded, the response is decoded into out (if any).
func (c *Client) send(ctx context.Context, op string, method rest.Method, path string, body, out interface{}) error {
	req := rest.Request{
		Method:  method,
		BaseURL: c.baseURL + path,
		Headers: map[string]string{
			"Accept":       "application/json",
			"X-Request-ID": uuid.New().String(),
		},
	}
	if token := c.tokenFor(ctx); token != "" {
		req.Headers["Authorization"] = "Bearer " + token
	}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "%s: encoding body", op)
		}
		req.Headers["Content-Type"] = "application/json"
		req.Body = data
	}

	resp, err := c.http.SendWithContext(ctx, req)
	if err != nil {
		c.logger.Warn(fmt.Sprintf("%s: %s %s failed", op, method, path), err)
		return core.NewRemoteError(op, 0, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errors.Wrap(core.ErrNotFound, op)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		msg := http.StatusText(resp.StatusCode)
		var rm remoteMessage
		if json.Unmarshal([]byte(resp.Body), &rm) == nil && rm.Error != "" {
			msg = rm.Error
		}
		c.logger.Warn(fmt.Sprintf("%s: %s %s -> %d", op, method, path, resp.StatusCode), map[string]interface{}{
			"request_id": req.Headers["X-Request-ID"],
			"message":    msg,
		})
		return core.NewRemoteError(op, resp.StatusCode, errors.New(msg))
	}

	if out != nil {
		if err = json.Unmarshal([]byte(resp.Body), out); err != nil {
			return core.NewRemoteError(op, resp.StatusCode, errors.Wrap(err, "decoding response"))
		}
	}
	return nil
}

func escape(id string) string {
	return url.PathEscape(id)
}

func (c *Client) GetLesson(ctx context.Context, id string) (lesson.Lesson, error) {
	var lsn lesson.Lesson
	err := c.send(ctx, "fetching lesson", rest.Get, "/lessons/"+escape(id), nil, &lsn)
	return lsn, err
}

func (c *Client) GetAcademicUE(ctx context.Context, id string) (lesson.AcademicUE, error) {
	var ue lesson.AcademicUE
	err := c.send(ctx, "fetching academic UE", rest.Get, "/academic-ues/"+escape(id), nil, &ue)
	return ue, err
}

func (c *Client) QueryLessonsByAcademicUE(ctx context.Context, academicUEID string) ([]lesson.Lesson, error) {
	lessons := make([]lesson.Lesson, 0)
	err := c.send(ctx, "fetching academic UE lessons", rest.Get, "/academic-ues/"+escape(academicUEID)+"/lessons", nil, &lessons)
	return lessons, err
}

type lessonUpdate struct {
	Status lesson.Status `json:"status"`
	Date   *core.Date    `json:"date,omitempty"`
}

func (c *Client) UpdateLessonStatusAndDate(ctx context.Context, id string, status lesson.Status, date *core.Date) (lesson.Lesson, error) {
	var lsn lesson.Lesson
	body := lessonUpdate{Status: status, Date: date}
	err := c.send(ctx, "updating lesson status", rest.Patch, "/lessons/"+escape(id), body, &lsn)
	return lsn, err
}

func (c *Client) GetLessonAttendanceContext(ctx context.Context, lessonID string) (attendance.Context, error) {
	var ac attendance.Context
	err := c.send(ctx, "fetching lesson attendance context", rest.Get, "/lessons/"+escape(lessonID)+"/attendance-context", nil, &ac)
	return ac, err
}

func (c *Client) UpsertAttendanceBatch(ctx context.Context, records []attendance.Record) ([]attendance.Record, error) {
	saved := make([]attendance.Record, 0, len(records))
	err := c.send(ctx, "upserting attendance batch", rest.Post, "/attendances/batch", records, &saved)
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (c *Client) QueryAttendanceSummary(ctx context.Context, academicUEID string) ([]attendance.SummaryRow, error) {
	rows := make([]attendance.SummaryRow, 0)
	err := c.send(ctx, "fetching attendance summary", rest.Get, "/academic-ues/"+escape(academicUEID)+"/attendance-summary", nil, &rows)
	return rows, err
}
