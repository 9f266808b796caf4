package identity

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/renalcare/renalcare/internal/platform/auth"
)

var (
	// ErrInvalidCredentials covers both unknown username and wrong
	// password so that login failures cannot be used to enumerate users.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRoleMismatch means the password was correct but the claimed role
	// disagrees with the stored one.
	ErrRoleMismatch  = errors.New("role mismatch")
	ErrNotFound      = errors.New("not found")
	ErrUsernameTaken = errors.New("username already taken")
)

// patientIDPrefix is the fixed prefix of human-readable patient identifiers.
const patientIDPrefix = "KC-"

// TxRunner runs fn with transactional repository access.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// passthroughTx is used when no transaction runner is configured (tests).
func passthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type Service struct {
	users    UserRepository
	patients PatientRepository
	sessions *auth.SessionRegistry
	secret   []byte
	runTx    TxRunner
	now      func() time.Time
}

func NewService(users UserRepository, patients PatientRepository, sessions *auth.SessionRegistry, secret []byte, runTx TxRunner) *Service {
	if runTx == nil {
		runTx = passthroughTx
	}
	return &Service{
		users:    users,
		patients: patients,
		sessions: sessions,
		secret:   secret,
		runTx:    runTx,
		now:      time.Now,
	}
}

// -- Credential lifecycle --

type LoginResult struct {
	Token string
	User  *User
}

// Login verifies username, password, and claimed role, then issues a fresh
// session credential. The credential is recorded in the session registry as
// best-effort bookkeeping; the token itself is what authenticates requests.
func (s *Service) Login(ctx context.Context, username, password string, claimedRole Role) (*LoginResult, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !auth.CheckPassword(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if claimedRole != u.Role {
		return nil, ErrRoleMismatch
	}

	token, err := auth.IssueToken(s.secret, u.ID.String(), s.now())
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	s.sessions.Record(token, u.ID.String())

	return &LoginResult{Token: token, User: u}, nil
}

// ResolveSubject implements auth.SubjectResolver. A user whose patient link
// points at a missing patient record fails resolution: that is a data
// integrity violation, not a normal "no patient" case.
func (s *Service) ResolveSubject(ctx context.Context, subject string) (*auth.Principal, error) {
	id, err := uuid.Parse(subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject: %w", err)
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	p := &auth.Principal{
		UserID:   u.ID.String(),
		Username: u.Username,
		FullName: u.FullName,
		Role:     string(u.Role),
	}

	if u.Role == RolePatient && u.PatientID != nil {
		pat, err := s.patients.GetByID(ctx, *u.PatientID)
		if err != nil {
			return nil, fmt.Errorf("resolve linked patient %s: %w", *u.PatientID, err)
		}
		p.Patient = &auth.PatientRef{PatientID: pat.PatientID, FullName: pat.FullName}
	}

	return p, nil
}

// -- Registration --

type RegisterInput struct {
	Username   string  `json:"username"`
	Password   string  `json:"password"`
	FullName   string  `json:"fullName"`
	Role       Role    `json:"role"`
	Specialty  *string `json:"specialty,omitempty"`
	Department *string `json:"department,omitempty"`
}

// Register creates a user account. Patient registrations also create a
// linked patient record with a generated clinic identifier; both writes
// happen in one transaction.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if in.Username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}
	if in.FullName == "" {
		return nil, fmt.Errorf("fullName is required")
	}
	if !in.Role.Valid() {
		return nil, fmt.Errorf("invalid role: %s", in.Role)
	}

	if _, err := s.users.GetByUsername(ctx, in.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		Username:     in.Username,
		FullName:     in.FullName,
		PasswordHash: hash,
		Role:         in.Role,
	}
	if in.Role.Clinician() {
		u.Specialty = in.Specialty
		u.Department = in.Department
	}

	err = s.runTx(ctx, func(ctx context.Context) error {
		if in.Role == RolePatient {
			pat := &Patient{FullName: in.FullName}
			if err := s.createPatientRecord(ctx, pat); err != nil {
				return err
			}
			u.PatientID = &pat.PatientID
		}
		return s.users.Create(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// -- Patients --

// newPatientID generates a human-readable identifier with the clinic
// prefix: six characters drawn from an unambiguous uppercase alphabet.
func newPatientID() (string, error) {
	const alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate patient id: %w", err)
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return patientIDPrefix + string(buf), nil
}

// createPatientRecord assigns an unused generated identifier and persists
// the patient row.
func (s *Service) createPatientRecord(ctx context.Context, p *Patient) error {
	if p.FullName == "" {
		return fmt.Errorf("full_name is required")
	}
	for attempt := 0; attempt < 10; attempt++ {
		id, err := newPatientID()
		if err != nil {
			return err
		}
		taken, err := s.patients.Exists(ctx, id)
		if err != nil {
			return fmt.Errorf("check patient id: %w", err)
		}
		if taken {
			continue
		}
		p.PatientID = id
		return s.patients.Create(ctx, p)
	}
	return fmt.Errorf("could not allocate an unused patient id")
}

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	return s.createPatientRecord(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, patientID string) (*Patient, error) {
	p, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	if p.FullName == "" {
		return fmt.Errorf("full_name is required")
	}
	err := s.patients.Update(ctx, p)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// DeletePatient removes a patient and, in the same transaction, any login
// account linked to it.
func (s *Service) DeletePatient(ctx context.Context, patientID string) error {
	return s.runTx(ctx, func(ctx context.Context) error {
		if err := s.users.DeleteByPatientID(ctx, patientID); err != nil {
			return err
		}
		err := s.patients.Delete(ctx, patientID)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	})
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

// -- Users --

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.users.List(ctx, limit, offset)
}

// ListUsersByRoles returns users holding any of the given roles, used by
// messaging to list messageable counterparts.
func (s *Service) ListUsersByRoles(ctx context.Context, roles ...Role) ([]*User, error) {
	return s.users.ListByRoles(ctx, roles)
}
