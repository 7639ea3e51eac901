// Package client talks to the attendance REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"classrecord/internal/attendance"
)

// APIError is a non-2xx response. Message is the server's error text when it sent one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string { return e.Message }

// Client calls the attendance API. It holds no state beyond its configuration
// and is safe for concurrent use.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

// New creates a client for baseURL (including the /api prefix).
func New(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func rangeQuery(r attendance.DateRange) url.Values {
	q := url.Values{}
	if r.Start != "" {
		q.Set("startDate", r.Start)
	}
	if r.End != "" {
		q.Set("endDate", r.End)
	}
	return q
}

func (c *Client) newRequest(ctx context.Context, method, path string, q url.Values, body any) (*http.Request, error) {
	u := c.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("attendance api request failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp, nil
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var env envelope
	msg := ""
	if json.Unmarshal(body, &env) == nil {
		msg = env.Error
		if msg == "" {
			msg = env.Message
		}
	}
	if msg == "" {
		msg = fmt.Sprintf("attendance api error %s", resp.Status)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}

// call performs a JSON request and decodes the envelope's data into out, if non-nil.
func (c *Client) call(ctx context.Context, method, path string, q url.Values, body, out any) error {
	req, err := c.newRequest(ctx, method, path, q, body)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

// ListSessions returns a section's sessions, newest first.
func (c *Client) ListSessions(ctx context.Context, sectionCourseID string, r attendance.DateRange) ([]attendance.Session, error) {
	var out []attendance.Session
	err := c.call(ctx, http.MethodGet, "/attendance/sessions/"+url.PathEscape(sectionCourseID), rangeQuery(r), nil, &out)
	return out, err
}

// CreateSession creates a session and returns it with its id.
func (c *Client) CreateSession(ctx context.Context, ns attendance.NewSession) (attendance.Session, error) {
	var out attendance.Session
	if err := c.call(ctx, http.MethodPost, "/attendance/sessions", nil, ns, &out); err != nil {
		return attendance.Session{}, err
	}
	if out.ID == "" {
		return attendance.Session{}, fmt.Errorf("create session: response has no session_id")
	}
	return out, nil
}

// DeleteSession removes a session and its records.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	return c.call(ctx, http.MethodDelete, "/attendance/sessions/"+url.PathEscape(sessionID), nil, nil, nil)
}

// MarkAttendance submits the full set of records for a session.
func (c *Client) MarkAttendance(ctx context.Context, sessionID string, records []attendance.Record) error {
	body := struct {
		SessionID string              `json:"session_id"`
		Records   []attendance.Record `json:"attendance_records"`
	}{sessionID, records}
	return c.call(ctx, http.MethodPost, "/attendance/mark", nil, body, nil)
}

// ListStudents returns a section's roster.
func (c *Client) ListStudents(ctx context.Context, sectionCourseID string) ([]attendance.Student, error) {
	var out []attendance.Student
	err := c.call(ctx, http.MethodGet, "/attendance/students/"+url.PathEscape(sectionCourseID), nil, nil, &out)
	return out, err
}

// Stats returns per-student statistics.
func (c *Client) Stats(ctx context.Context, sectionCourseID string, r attendance.DateRange) ([]attendance.StudentStats, error) {
	var out []attendance.StudentStats
	err := c.call(ctx, http.MethodGet, "/attendance/stats/"+url.PathEscape(sectionCourseID), rangeQuery(r), nil, &out)
	return out, err
}

// ClassAttendance lists stored records of a section.
func (c *Client) ClassAttendance(ctx context.Context, sectionCourseID string, f attendance.LogFilter) ([]attendance.LogEntry, error) {
	q := rangeQuery(f.Range)
	if f.Date != "" {
		q.Set("date", f.Date)
	}
	var out []attendance.LogEntry
	err := c.call(ctx, http.MethodGet, "/attendance/class/"+url.PathEscape(sectionCourseID), q, nil, &out)
	return out, err
}

// UpdateRecord changes one stored record.
func (c *Client) UpdateRecord(ctx context.Context, attendanceID string, status attendance.Status, remarks string) (attendance.LogEntry, error) {
	body := struct {
		Status  attendance.Status `json:"status"`
		Remarks string            `json:"remarks"`
	}{status, remarks}
	var out attendance.LogEntry
	err := c.call(ctx, http.MethodPut, "/attendance/"+url.PathEscape(attendanceID), nil, body, &out)
	return out, err
}

// Summary returns the per-course dashboard of a faculty member.
func (c *Client) Summary(ctx context.Context, facultyID string, r attendance.DateRange) ([]attendance.CourseSummary, error) {
	var out []attendance.CourseSummary
	err := c.call(ctx, http.MethodGet, "/attendance/summary/"+url.PathEscape(facultyID), rangeQuery(r), nil, &out)
	return out, err
}

// Download is an export body passed through unopened. The caller must close Body.
type Download struct {
	Filename    string
	ContentType string
	Body        io.ReadCloser
}

// Export requests an attendance export in the given format ("csv" or "json").
func (c *Client) Export(ctx context.Context, sectionCourseID, format string, r attendance.DateRange) (*Download, error) {
	if format == "" {
		format = "csv"
	}
	q := rangeQuery(r)
	q.Set("format", format)
	req, err := c.newRequest(ctx, http.MethodGet, "/attendance/export/"+url.PathEscape(sectionCourseID), q, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "*/*")
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	d := &Download{ContentType: resp.Header.Get("Content-Type"), Body: resp.Body}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		d.Filename = params["filename"]
	}
	if d.Filename == "" {
		d.Filename = "attendance_" + sectionCourseID + "." + format
	}
	return d, nil
}
