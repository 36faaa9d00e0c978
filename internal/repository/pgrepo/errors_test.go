package pgrepo

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/suite"

	"github.com/osama-agency/telesklad/internal/domain"
)

type ConvertErrTestSuite struct {
	suite.Suite
}

func TestConvertErrSuite(t *testing.T) {
	suite.Run(t, new(ConvertErrTestSuite))
}

func (s *ConvertErrTestSuite) TestConvertErr() {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{name: "no rows", err: pgx.ErrNoRows, want: domain.ErrRecordNotFound},
		{name: "unique violation", err: &pgconn.PgError{Code: uniqueViolationCode}, want: domain.ErrDuplicateKey},
		{name: "fk violation", err: &pgconn.PgError{Code: foreignKeyViolationCode}, want: domain.ErrRecordNotFound},
		{name: "skipped insert", err: &duplicateRowError{}, want: domain.ErrDuplicateKey},
		{name: "other pg error", err: &pgconn.PgError{Code: "40001"}, want: domain.ErrUnknown},
		{name: "plain error", err: errors.New("boom"), want: domain.ErrUnknown},
	}

	for _, c := range cases {
		s.Run(c.name, func() {
			err := convertErr(c.err, "doing %s", "something")
			s.Require().ErrorIs(err, c.want)
			s.Contains(err.Error(), "[repository/doing something]")
		})
	}

	s.NoError(convertErr(nil, "nothing"))
}
