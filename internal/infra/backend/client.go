// internal/infra/backend/client.go
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName      = "eara_connect_portal/backend"
	maxErrorBody    = 64 * 1024
	defaultTimeout  = 15 * time.Second
	jsonContentType = "application/json"
)

// Client is the REST client for the EARA Connect backend. One method per endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	validate   *validator.Validate
	tracer     trace.Tracer
	log        *logrus.Entry
}

type Options struct {
	BaseURL    string // origin + "/api"
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logrus.Entry
}

func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	log := opts.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: httpClient,
		validate:   validator.New(),
		tracer:     otel.Tracer(tracerName),
		log:        log,
	}
}

type sessionKey struct{}

// WithSession attaches the backend session cookie captured at login to ctx.
func WithSession(ctx context.Context, cookie string) context.Context {
	if cookie == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, cookie)
}

func sessionFrom(ctx context.Context) string {
	cookie, _ := ctx.Value(sessionKey{}).(string)
	return cookie
}

// url joins path onto the base URL, tolerating a duplicated "/api" prefix.
func (c *Client) url(path string, query url.Values) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if strings.HasSuffix(c.baseURL, "/api") && strings.HasPrefix(path, "/api/") {
		path = strings.TrimPrefix(path, "/api")
	}
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do sends a JSON request and decodes the response into out, when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	reader, err := jsonReader(body)
	if err != nil {
		return fmt.Errorf("encode %s %s body: %w", method, path, err)
	}
	_, err = c.send(ctx, method, path, query, reader, jsonContentType, body != nil, out)
	return err
}

func jsonReader(body interface{}) (io.Reader, error) {
	if body == nil {
		return nil, nil
	}
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(buf), nil
}

// doMultipart uploads a single file part.
func (c *Client) doMultipart(ctx context.Context, path, field, filename, contentType string, content io.Reader, out interface{}) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, escapeQuotes(filename)))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create multipart part: %w", err)
	}
	if _, err = io.Copy(part, content); err != nil {
		return fmt.Errorf("write multipart part: %w", err)
	}
	if err = mw.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	_, err = c.send(ctx, http.MethodPost, path, nil, &buf, mw.FormDataContentType(), true, out)
	return err
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, hasBody bool, out interface{}) (*http.Response, error) {
	ctx, span := c.tracer.Start(ctx, method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", path),
		))
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, method, c.url(path, query), body)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", jsonContentType)
	if hasBody {
		req.Header.Set("Content-Type", contentType)
	}
	if cookie := sessionFrom(ctx); cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		c.log.WithFields(logrus.Fields{"method": method, "path": path}).WithError(err).Warn("Backend request failed")
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	c.log.WithFields(logrus.Fields{
		"method":  method,
		"path":    path,
		"status":  resp.StatusCode,
		"latency": time.Since(start).String(),
	}).Debug("Backend request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := parseError(resp.StatusCode, raw)
		span.SetStatus(codes.Error, apiErr.Message)
		return resp, apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if err == io.EOF {
			return resp, nil
		}
		span.RecordError(err)
		return resp, fmt.Errorf("%w: decode %s %s: %v", ErrInvalidPayload, method, path, err)
	}
	if err := c.check(out); err != nil {
		span.RecordError(err)
		return resp, fmt.Errorf("%w: %s %s: %v", ErrInvalidPayload, method, path, err)
	}
	return resp, nil
}

// check runs struct validation over a decoded payload, element by element for slices.
func (c *Client) check(out interface{}) error {
	v := reflect.ValueOf(out)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Struct:
		return c.validate.Struct(v.Addr().Interface())
	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			elem := v.Index(i)
			if elem.Kind() == reflect.Ptr {
				if elem.IsNil() {
					return fmt.Errorf("element %d is null", i)
				}
				elem = elem.Elem()
			}
			if elem.Kind() != reflect.Struct {
				continue
			}
			if err := c.validate.Struct(elem.Addr().Interface()); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
	}
	return nil
}

func escapeQuotes(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

func idPath(format string, ids ...int64) string {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return fmt.Sprintf(format, args...)
}
