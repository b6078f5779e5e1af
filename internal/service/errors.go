package service

import "errors"

var (
	ErrAssessmentNotFound     = errors.New("assessment not found")
	ErrAssessmentCompleted    = errors.New("assessment already completed")
	ErrAssessmentNotCompleted = errors.New("assessment not completed")
	ErrNoCompletedAssessments = errors.New("no completed assessments")
	ErrInvalidCredentials     = errors.New("invalid access code or password")
	ErrOrganizationNotFound   = errors.New("organization not found")
	ErrInvalidProgram         = errors.New("invalid program")
	ErrInvalidInput           = errors.New("invalid input")
)
