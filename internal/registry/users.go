package registry

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/scrypt"

	"taskboard/internal/model"
	"taskboard/internal/storage"
)

const DefaultRole = "member"

type UserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UserPatch updates a user. An empty password leaves the hash unchanged.
type UserPatch struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Role     *string `json:"role"`
	Password string  `json:"password"`
}

// SeedUser is the bootstrap account created on an empty user collection.
type SeedUser struct {
	Name     string
	Email    string
	Password string
}

type Users struct {
	col *storage.Collection[model.UserRecord]

	seedOnce sync.Once
	seedErr  error
}

func NewUsers(s storage.Store) *Users {
	return &Users{col: storage.NewCollection[model.UserRecord](s, storage.Users)}
}

func (r *Users) List(ctx context.Context) ([]model.User, error) {
	recs, err := r.col.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.User, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.User)
	}
	model.SortByName(out, func(u model.User) string { return u.Name })
	return out, nil
}

func (r *Users) Get(ctx context.Context, id string) (model.User, error) {
	rec, ok, err := r.col.Get(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	if !ok {
		return model.User{}, model.NotFound("user")
	}
	return rec.User, nil
}

func (r *Users) Index(ctx context.Context) (map[string]model.User, error) {
	recs, err := r.col.All(ctx)
	if err != nil {
		return nil, err
	}
	m := make(map[string]model.User, len(recs))
	for _, rec := range recs {
		m[rec.ID] = rec.User
	}
	return m, nil
}

func (r *Users) Create(ctx context.Context, in UserInput) (model.User, error) {
	name := model.Clean(in.Name, model.MaxNameLen)
	email := userEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return model.User{}, model.Invalid("Name, email and password are required")
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return model.User{}, err
	}
	ts := now()
	rec := model.UserRecord{
		User: model.User{
			ID:        model.NewID(),
			Name:      name,
			Email:     email,
			Role:      userRole(in.Role),
			CreatedAt: ts,
			UpdatedAt: ts,
		},
		PasswordHash: hash,
	}
	err = r.col.Write(ctx, func(w *storage.Writer[model.UserRecord]) error {
		all, err := w.All()
		if err != nil {
			return err
		}
		if nameTaken(all, "", email, userEmailKey) {
			return model.Invalid("User with this email already exists")
		}
		return w.Put(rec)
	})
	if err != nil {
		return model.User{}, err
	}
	return rec.User, nil
}

func (r *Users) Update(ctx context.Context, id string, p UserPatch) (model.User, error) {
	var hash string
	if p.Password != "" {
		h, err := hashPassword(p.Password)
		if err != nil {
			return model.User{}, err
		}
		hash = h
	}
	var out model.User
	err := r.col.Write(ctx, func(w *storage.Writer[model.UserRecord]) error {
		all, err := w.All()
		if err != nil {
			return err
		}
		rec, ok := find(all, id)
		if !ok {
			return model.NotFound("user")
		}
		if p.Name != nil {
			name := model.Clean(*p.Name, model.MaxNameLen)
			if name == "" {
				return model.Invalid("Name is required")
			}
			rec.Name = name
		}
		if p.Email != nil {
			email := userEmail(*p.Email)
			if email == "" {
				return model.Invalid("Email is required")
			}
			if nameTaken(all, id, email, userEmailKey) {
				return model.Invalid("User with this email already exists")
			}
			rec.Email = email
		}
		if p.Role != nil {
			rec.Role = userRole(*p.Role)
		}
		if hash != "" {
			rec.PasswordHash = hash
		}
		rec.UpdatedAt = now()
		out = rec.User
		return w.Put(rec)
	})
	return out, err
}

func (r *Users) Delete(ctx context.Context, id string) (bool, error) {
	var found bool
	err := r.col.Write(ctx, func(w *storage.Writer[model.UserRecord]) error {
		var err error
		found, err = w.Delete(id)
		return err
	})
	return found, err
}

// Authenticate returns the user owning email if password matches its hash.
func (r *Users) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	recs, err := r.col.All(ctx)
	if err != nil {
		return model.User{}, err
	}
	email = userEmail(email)
	for _, rec := range recs {
		if rec.Email == email && checkPassword(rec.PasswordHash, password) {
			return rec.User, nil
		}
	}
	return model.User{}, model.NotFound("user")
}

// EnsureSeed creates the seed user when no users exist. Only the first call
// does any work; later calls return its result.
func (r *Users) EnsureSeed(ctx context.Context, seed SeedUser) error {
	r.seedOnce.Do(func() {
		r.seedErr = r.seed(ctx, seed)
	})
	return r.seedErr
}

func (r *Users) seed(ctx context.Context, seed SeedUser) error {
	hash, err := hashPassword(seed.Password)
	if err != nil {
		return err
	}
	return r.col.Write(ctx, func(w *storage.Writer[model.UserRecord]) error {
		all, err := w.All()
		if err != nil || len(all) > 0 {
			return err
		}
		ts := now()
		return w.Put(model.UserRecord{
			User: model.User{
				ID:        model.NewID(),
				Name:      model.Clean(seed.Name, model.MaxNameLen),
				Email:     userEmail(seed.Email),
				Role:      DefaultRole,
				CreatedAt: ts,
				UpdatedAt: ts,
			},
			PasswordHash: hash,
		})
	})
}

func userEmail(s string) string {
	return model.Truncate(strings.ToLower(strings.TrimSpace(s)), model.MaxEmailLen)
}

func userEmailKey(u model.UserRecord) string { return u.Email }

func userRole(s string) string {
	if s = model.Clean(s, model.MaxNameLen); s == "" {
		return DefaultRole
	}
	return s
}

// scrypt parameters; hashes are stored as "salthex:keyhex".
const (
	scryptN      = 16384
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 64
	saltLen      = 16
)

func hashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}
	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", fmt.Errorf("scrypt: %w", err)
	}
	return hex.EncodeToString(salt) + ":" + hex.EncodeToString(key), nil
}

func checkPassword(stored, password string) bool {
	saltHex, keyHex, ok := strings.Cut(stored, ":")
	if !ok {
		return false
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}
	want, err := hex.DecodeString(keyHex)
	if err != nil {
		return false
	}
	got, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, len(want))
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(got, want) == 1
}
