package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/volatiletech/null/v8"
)

var (
	// errors
	ErrNotFound      = errors.New("subject not found")
	ErrSubjectExists = errors.New("a subject with this name already exists in this semester")
)

type (
	Repository interface {
		CreateSubject(ctx context.Context, sub Subject) (Subject, error)
		GetSubjectByID(ctx context.Context, id int64) (Subject, error)
		GetSubjectByNameAndSemester(ctx context.Context, name string, semester int) (Subject, error)
		FilterSubjectsBySemester(ctx context.Context, semester int) ([]Subject, error)
		QueryAllSubjects(ctx context.Context) ([]Subject, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ns NewSubject) (Subject, error) {
	sub := Subject{
		Name:      ns.Name,
		Semester:  ns.Semester,
		CreatedAt: time.Now().UTC(),
	}
	if ns.Description != "" {
		sub.Description = null.StringFrom(ns.Description)
	}
	return svc.repo.CreateSubject(ctx, sub)
}

func (svc *Service) GetByID(ctx context.Context, id int64) (Subject, error) {
	return svc.repo.GetSubjectByID(ctx, id)
}

func (svc *Service) FilterBySemester(ctx context.Context, semester int) ([]Subject, error) {
	return svc.repo.FilterSubjectsBySemester(ctx, semester)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Subject, error) {
	return svc.repo.QueryAllSubjects(ctx)
}
