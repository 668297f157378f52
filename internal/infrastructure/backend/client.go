// Package backend is the HTTP gateway to the user-management REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/usermgmt/admin-console/internal/api/metrics"
	"github.com/usermgmt/admin-console/internal/core/domain"
	"github.com/usermgmt/admin-console/internal/core/ports"
)

const (
	DefaultTokenHeader = "Jwt-Token"
	defaultTimeout     = 30 * time.Second

	// errorBodyLimit caps how much of an error body is read.
	errorBodyLimit = 64 << 10
)

// Config describes how to reach the backend.
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	TokenHeader string
	// Transport is the innermost round tripper. Defaults to http.DefaultTransport.
	Transport http.RoundTripper
}

// Client implements ports.UserBackend over HTTP.
type Client struct {
	baseURL     string
	tokenHeader string
	http        *http.Client
	log         zerolog.Logger
}

var _ ports.UserBackend = (*Client)(nil)

// NewClient builds a client whose transport chain is
// metrics → request id → authenticator → cfg.Transport.
func NewClient(cfg Config, tokens ports.TokenSource, log zerolog.Logger) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend: invalid base url %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	header := cfg.TokenHeader
	if header == "" {
		header = DefaultTokenHeader
	}

	var rt http.RoundTripper = NewAuthenticator(cfg.Transport, tokens, base.Path)
	rt = requestID{next: rt}
	rt = metrics.InstrumentTransport(rt)

	return &Client{
		baseURL:     base.String(),
		tokenHeader: header,
		http:        &http.Client{Timeout: timeout, Transport: rt},
		log:         log,
	}, nil
}

// errorBody mirrors the backend's HttpResponse error envelope.
type errorBody struct {
	HTTPStatusCode int    `json:"httpStatusCode"`
	HTTPStatus     string `json:"httpStatus"`
	Reason         string `json:"reason"`
	Message        string `json:"message"`
}

func (c *Client) Login(ctx context.Context, creds domain.Credentials) (ports.LoginResponse, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/user/login", creds)
	if err != nil {
		return ports.LoginResponse{}, err
	}

	var user *domain.User
	header, err := c.do(req, &user)
	if err != nil {
		return ports.LoginResponse{}, err
	}
	return ports.LoginResponse{Token: header.Get(c.tokenHeader), User: user}, nil
}

func (c *Client) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/user/register", reg)
	if err != nil {
		return nil, err
	}
	var user *domain.User
	if _, err := c.do(req, &user); err != nil {
		return nil, err
	}
	return user, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/user/list", nil)
	if err != nil {
		return nil, err
	}
	var users []domain.User
	if _, err := c.do(req, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) AddUser(ctx context.Context, form domain.UserForm) (*domain.User, error) {
	return c.postUserForm(ctx, "/user/add", form)
}

func (c *Client) UpdateUser(ctx context.Context, form domain.UserForm) (*domain.User, error) {
	return c.postUserForm(ctx, "/user/update", form)
}

func (c *Client) ResetPassword(ctx context.Context, email string) (domain.Ack, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/resetPassword/"+url.PathEscape(email), nil)
	if err != nil {
		return domain.Ack{}, err
	}
	var ack domain.Ack
	if _, err := c.do(req, &ack); err != nil {
		return domain.Ack{}, err
	}
	return ack, nil
}

func (c *Client) DeleteUser(ctx context.Context, username string) (domain.Ack, error) {
	req, err := c.newRequest(ctx, http.MethodDelete, "/user/delete/"+url.PathEscape(username), nil)
	if err != nil {
		return domain.Ack{}, err
	}
	var ack domain.Ack
	if _, err := c.do(req, &ack); err != nil {
		return domain.Ack{}, err
	}
	return ack, nil
}

// UpdateProfileImage posts the image as multipart and reports request body
// progress through progress, starting at zero bytes.
func (c *Client) UpdateProfileImage(ctx context.Context, form domain.ProfileImageForm, progress ports.ProgressFunc) (*domain.User, error) {
	body, contentType, err := encodeMultipart(func(w *multipart.Writer) error {
		if err := w.WriteField("username", form.Username); err != nil {
			return err
		}
		return writeImage(w, form.Image)
	})
	if err != nil {
		return nil, err
	}

	total := int64(len(body))
	if progress == nil {
		progress = func(int64, int64) {}
	}
	progress(0, total)

	req, err := c.newRequest(ctx, http.MethodPost, "/user/updateProfileImage", &progressReader{
		r:        bytes.NewReader(body),
		total:    total,
		progress: progress,
	})
	if err != nil {
		return nil, err
	}
	req.ContentLength = total
	req.Header.Set("Content-Type", contentType)

	var user *domain.User
	if _, err := c.do(req, &user); err != nil {
		return nil, err
	}
	return user, nil
}

func (c *Client) postUserForm(ctx context.Context, path string, form domain.UserForm) (*domain.User, error) {
	body, contentType, err := encodeMultipart(func(w *multipart.Writer) error {
		fields := [][2]string{
			{"currentUsername", form.CurrentUsername},
			{"firstName", form.FirstName},
			{"lastName", form.LastName},
			{"username", form.Username},
			{"email", form.Email},
			{"role", string(form.Role)},
			{"isActive", strconv.FormatBool(form.Active)},
			{"isNotLocked", strconv.FormatBool(form.NotLocked)},
		}
		for _, f := range fields {
			if err := w.WriteField(f[0], f[1]); err != nil {
				return err
			}
		}
		if form.ProfileImage == nil {
			return nil
		}
		return writeImage(w, form.ProfileImage)
	})
	if err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	var user *domain.User
	if _, err := c.do(req, &user); err != nil {
		return nil, err
	}
	return user, nil
}

func (c *Client) newJSONRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("backend: encode %s: %w", path, err)
	}
	req, err := c.newRequest(ctx, method, path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("backend: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do sends req and decodes a 2xx body into out. Transport failures become
// network errors; non-2xx answers become backend errors carrying the
// server's message.
func (c *Client) do(req *http.Request, out any) (http.Header, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", req.Method).Str("path", req.URL.Path).Msg("backend unreachable")
		return nil, domain.NewNetworkError(err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("backend call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.Header, decodeError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.Header, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return resp.Header, domain.NewNetworkError(fmt.Errorf("decode %s response: %w", req.URL.Path, err))
	}
	return resp.Header, nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))

	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return domain.NewBackendError(resp.StatusCode, "")
	}
	msg := body.Message
	if msg == "" {
		msg = body.Reason
	}
	return domain.NewBackendError(resp.StatusCode, msg)
}

func encodeMultipart(write func(*multipart.Writer) error) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := write(w); err != nil {
		return nil, "", fmt.Errorf("backend: encode form: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("backend: encode form: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func writeImage(w *multipart.Writer, img *domain.ImageFile) error {
	if img == nil {
		return errors.New("missing image")
	}
	part, err := w.CreateFormFile("profileImage", img.Name)
	if err != nil {
		return err
	}
	_, err = part.Write(img.Content)
	return err
}

// progressReader reports how much of the body has been consumed.
type progressReader struct {
	r        io.Reader
	loaded   int64
	total    int64
	progress ports.ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.loaded += int64(n)
		p.progress(p.loaded, p.total)
	}
	return n, err
}
