package patient

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
)

// ErrNotFound is returned when no patient matches the given id.
var ErrNotFound = errors.New("patient not found")

type Repository interface {
	FindByID(ctx context.Context, patientID int) (*Patient, error)
	FindAll(ctx context.Context) ([]Patient, error)
	// UpdateFields $sets the given fields on the patient document and
	// returns the number of matched documents.
	UpdateFields(ctx context.Context, patientID int, fields bson.M) (int64, error)
}
