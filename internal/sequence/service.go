// Package sequence derives the next stock-code suffix for a
// (family, diameter) pair from the codes that currently exist.
package sequence

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/galvan-crm/galvan/internal/platform/httpx"
)

// Repository looks up the highest existing 2-digit suffix among stock
// codes matching a prefix. A nil result means no code exists yet.
type Repository interface {
	MaxSuffix(ctx context.Context, kod2, prefix string) (*int, error)
}

// NextCode is the generator's output: the next sequence in numeric and
// zero-padded form, plus the fully assembled candidate stock code.
type NextCode struct {
	NextSequence      int    `json:"next_sequence"`
	FormattedSequence string `json:"formatted_sequence"`
	StokKodu          string `json:"stok_kodu"`
}

// Service computes next stock codes of the form GT.{kod_2}.{cap4}.{seq2}.
type Service struct {
	repo Repository
}

// NewService creates the generator over a suffix repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// FormatDiameter normalizes a possibly comma-decimal diameter into the
// fixed 4-character encoding: rounded to two decimals, decimal point
// removed, left-padded with zeros ("2,5" -> "0250").
func FormatDiameter(cap string) (string, error) {
	candidate := strings.TrimSpace(strings.ReplaceAll(cap, ",", "."))
	f, err := strconv.ParseFloat(candidate, 64)
	if err != nil || f < 0 {
		return "", fmt.Errorf("%w: invalid diameter %q", httpx.ErrValidation, cap)
	}
	encoded := strconv.Itoa(int(math.Round(f * 100)))
	for len(encoded) < 4 {
		encoded = "0" + encoded
	}
	return encoded, nil
}

// Next returns the next sequence for the (family, diameter) pair. The
// suffix is derived from the MAX of existing codes, so gaps left by
// deleted products are never reused.
func (s *Service) Next(ctx context.Context, kod2, cap string) (NextCode, error) {
	if kod2 == "" || cap == "" {
		return NextCode{}, fmt.Errorf("%w: kod_2 and cap are required", httpx.ErrValidation)
	}
	diameter, err := FormatDiameter(cap)
	if err != nil {
		return NextCode{}, err
	}

	prefix := fmt.Sprintf("GT.%s.%s.", kod2, diameter)
	maxSeq, err := s.repo.MaxSuffix(ctx, kod2, prefix+"%")
	if err != nil {
		return NextCode{}, fmt.Errorf("sequence: max suffix: %w", err)
	}

	next := 1
	if maxSeq != nil {
		next = *maxSeq + 1
	}
	formatted := fmt.Sprintf("%02d", next)
	return NextCode{
		NextSequence:      next,
		FormattedSequence: formatted,
		StokKodu:          prefix + formatted,
	}, nil
}
