package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/tbourn/go-survey-backend/internal/domain"
	"github.com/tbourn/go-survey-backend/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const maxTopicRunes = 200

// TopicService manages catalog topics. Mutations are reserved to admins by
// the HTTP layer.
type TopicService struct {
	DB *gorm.DB
}

// List returns every topic ordered by name.
func (s *TopicService) List(ctx context.Context) ([]domain.Topic, error) {
	tr := otel.Tracer("services/TopicService")
	ctx, span := tr.Start(ctx, "List")
	defer span.End()

	return repo.ListTopics(ctx, s.DB)
}

// normalizeTopic trims name and derives the slug from it when blank.
func normalizeTopic(name, slug string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", fmt.Errorf("%w: name is required", ErrInvalidTopic)
	}
	if utf8.RuneCountInString(name) > maxTopicRunes {
		return "", "", fmt.Errorf("%w: name exceeds %d characters", ErrInvalidTopic, maxTopicRunes)
	}
	src := strings.TrimSpace(slug)
	if src == "" {
		src = name
	}
	slug = Slugify(src, "")
	if slug == "" {
		return "", "", fmt.Errorf("%w: slug must contain letters or digits", ErrInvalidTopic)
	}
	if len(slug) > maxTopicRunes {
		slug = strings.Trim(slug[:maxTopicRunes], "-")
	}
	return name, slug, nil
}

func (s *TopicService) ensureSlugFree(ctx context.Context, slug string, exceptID uint) error {
	taken, err := repo.SlugTaken(ctx, s.DB, slug, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicateSlug
	}
	return nil
}

// Create stores a topic. The slug is derived from name when blank.
func (s *TopicService) Create(ctx context.Context, name, slug string) (*domain.Topic, error) {
	tr := otel.Tracer("services/TopicService")
	ctx, span := tr.Start(ctx, "Create", trace.WithAttributes(attribute.String("topic.name", name)))
	defer span.End()

	name, slug, err := normalizeTopic(name, slug)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(ctx, slug, 0); err != nil {
		return nil, err
	}
	t := &domain.Topic{Name: name, Slug: slug}
	if err := repo.CreateTopic(ctx, s.DB, t); err != nil {
		if repo.IsUniqueViolation(err) {
			return nil, ErrDuplicateSlug
		}
		return nil, err
	}
	return t, nil
}

// Update renames a topic.
func (s *TopicService) Update(ctx context.Context, id uint, name, slug string) (*domain.Topic, error) {
	tr := otel.Tracer("services/TopicService")
	ctx, span := tr.Start(ctx, "Update", trace.WithAttributes(attribute.Int("topic.id", int(id))))
	defer span.End()

	name, slug, err := normalizeTopic(name, slug)
	if err != nil {
		return nil, err
	}
	t, err := repo.GetTopic(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrTopicNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(ctx, slug, id); err != nil {
		return nil, err
	}
	t.Name, t.Slug = name, slug
	if err := repo.UpdateTopic(ctx, s.DB, t); err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return nil, ErrTopicNotFound
		case repo.IsUniqueViolation(err):
			return nil, ErrDuplicateSlug
		}
		return nil, err
	}
	return t, nil
}

// Delete removes a topic no survey refers to.
func (s *TopicService) Delete(ctx context.Context, id uint) error {
	tr := otel.Tracer("services/TopicService")
	ctx, span := tr.Start(ctx, "Delete", trace.WithAttributes(attribute.Int("topic.id", int(id))))
	defer span.End()

	inUse, err := repo.TopicInUse(ctx, s.DB, id)
	if err != nil {
		return err
	}
	if inUse {
		return ErrTopicInUse
	}
	if err := repo.DeleteTopic(ctx, s.DB, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrTopicNotFound
		}
		return err
	}
	return nil
}
