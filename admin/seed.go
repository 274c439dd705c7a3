package admin

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"postboard/app/models"
	"postboard/app/repositories"
	"postboard/app/services"
)

// Fixtures is the YAML seed file layout.
type Fixtures struct {
	Groups []struct {
		Title       string `yaml:"title"`
		Slug        string `yaml:"slug"`
		Description string `yaml:"description"`
	} `yaml:"groups"`
	Authors []struct {
		Username string `yaml:"username"`
	} `yaml:"authors"`
	Posts []struct {
		Author string `yaml:"author"`
		Text   string `yaml:"text"`
		Group  string `yaml:"group"`
	} `yaml:"posts"`
}

// SeedReport counts what Seed created and skipped.
type SeedReport struct {
	Groups  int
	Authors int
	Posts   int
	Skipped int
}

// LoadFixtures reads a seed file.
func LoadFixtures(path string) (*Fixtures, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fx Fixtures
	if err := yaml.Unmarshal(raw, &fx); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &fx, nil
}

// Seed creates the fixtures through the services so every record passes
// the same validation as an HTTP request. Groups and authors that already
// exist are skipped; posts are created in file order, so the last one
// listed is the newest.
func Seed(ctx context.Context, svc *services.Services, fx *Fixtures) (SeedReport, error) {
	var rep SeedReport

	for _, g := range fx.Groups {
		_, err := svc.Groups.CreateGroup(ctx, models.Group{Title: g.Title, Slug: g.Slug, Description: g.Description})
		switch {
		case errors.Is(err, repositories.ErrAlreadyExists):
			rep.Skipped++
		case err != nil:
			return rep, fmt.Errorf("group %q: %w", g.Slug, err)
		default:
			rep.Groups++
		}
	}

	for _, a := range fx.Authors {
		_, err := svc.Authors.CreateAuthor(ctx, a.Username)
		switch {
		case errors.Is(err, repositories.ErrAlreadyExists):
			rep.Skipped++
		case err != nil:
			return rep, fmt.Errorf("author %q: %w", a.Username, err)
		default:
			rep.Authors++
		}
	}

	for i, p := range fx.Posts {
		in := services.PostInput{Author: p.Author, Text: p.Text}
		if p.Group != "" {
			g, err := svc.Groups.GetGroup(ctx, p.Group)
			if err != nil {
				return rep, fmt.Errorf("post %d: %w", i+1, err)
			}
			in.GroupID = &g.ID
		}
		if _, err := svc.Posts.CreatePost(ctx, in); err != nil {
			return rep, fmt.Errorf("post %d: %w", i+1, err)
		}
		rep.Posts++
	}
	return rep, nil
}
