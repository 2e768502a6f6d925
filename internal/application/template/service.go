// Package template stores named templates and renders them with dotted-path
// variable interpolation.
package template

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-notification-hub/internal/domain"
	"github.com/go-notification-hub/internal/pkg/validate"
	"gopkg.in/yaml.v3"
)

type Service interface {
	Save(ctx context.Context, in domain.TemplateInput) (*domain.Template, error)
	Get(ctx context.Context, name string) (*domain.Template, error)
	List(ctx context.Context) ([]domain.Template, error)
	RenderByName(ctx context.Context, name string, vars map[string]any) (domain.Rendered, error)
	Import(ctx context.Context, r io.Reader) ([]domain.Template, error)
}

type templateStore interface {
	Put(ctx context.Context, t *domain.Template) error
	Get(ctx context.Context, name string) (*domain.Template, error)
	Scan(ctx context.Context) ([]domain.Template, error)
}

type service struct {
	repo templateStore
	now  func() time.Time
}

func NewService(repo templateStore) Service {
	return &service{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// Save upserts a template by name. CreatedAt survives an overwrite.
func (s *service) Save(ctx context.Context, in domain.TemplateInput) (*domain.Template, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	channel, err := domain.ParseChannel(in.Channel)
	if err != nil {
		return nil, fmt.Errorf("template %q: %w: %w", in.Name, domain.ErrBadRequest, err)
	}

	now := s.now()
	t := &domain.Template{
		Name:      in.Name,
		Channel:   channel,
		Subject:   in.Subject,
		Body:      in.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if existing, err := s.repo.Get(ctx, in.Name); err == nil {
		t.CreatedAt = existing.CreatedAt
	}
	if err := s.repo.Put(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) Get(ctx context.Context, name string) (*domain.Template, error) {
	return s.repo.Get(ctx, name)
}

func (s *service) List(ctx context.Context) ([]domain.Template, error) {
	return s.repo.Scan(ctx)
}

func (s *service) RenderByName(ctx context.Context, name string, vars map[string]any) (domain.Rendered, error) {
	t, err := s.repo.Get(ctx, name)
	if err != nil {
		return domain.Rendered{}, err
	}
	return Render(*t, vars), nil
}

type bundle struct {
	Templates []domain.TemplateInput `yaml:"templates"`
}

// Import reads a YAML bundle of the form
//
//	templates:
//	  - name: welcome
//	    channel: email
//	    subject: "Hi {{name}}"
//	    body: "Welcome, {{name}}!"
//
// and saves each entry. It stops at the first invalid entry.
func (s *service) Import(ctx context.Context, r io.Reader) ([]domain.Template, error) {
	var b bundle
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode template bundle: %w: %w", domain.ErrBadRequest, err)
	}

	out := make([]domain.Template, 0, len(b.Templates))
	for i, in := range b.Templates {
		t, err := s.Save(ctx, in)
		if err != nil {
			return out, fmt.Errorf("template #%d: %w", i+1, err)
		}
		out = append(out, *t)
	}
	return out, nil
}
