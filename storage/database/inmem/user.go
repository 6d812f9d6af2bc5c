package inmemdb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/amss/core"
	"github.com/trezcool/amss/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.db.users))
	for _, u := range repo.db.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users
}

func (repo *userRepository) CheckUsernameUniqueness(_ context.Context, username, email string, excludedUsers []user.User, _ ...core.DBExecutor) error {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	excluded := make(map[string]bool, len(excludedUsers))
	for _, u := range excludedUsers {
		excluded[u.ID] = true
	}
	for _, usr := range repo.db.users {
		if excluded[usr.ID] {
			continue
		}
		if (username != "" && strings.EqualFold(usr.Username, username)) ||
			(email != "" && strings.EqualFold(usr.Email, email)) {
			return user.ErrUserExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	if usr.ID == "" {
		usr.ID = uuid.New().String()
	}
	repo.db.mut.Lock()
	defer repo.db.mut.Unlock()
	u := usr
	write(exec, func() { repo.db.users[u.ID] = &u })
	return usr, nil
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter, _ ...core.DBExecutor) (user.User, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	for _, usr := range repo.db.users {
		switch {
		case filter.ID != "" && usr.ID == filter.ID:
			return *usr, nil
		case filter.Username != "" && strings.EqualFold(usr.Username, filter.Username):
			return *usr, nil
		case filter.Email != "" && strings.EqualFold(usr.Email, filter.Email):
			return *usr, nil
		case filter.UsernameOrEmail != "" &&
			(strings.EqualFold(usr.Username, filter.UsernameOrEmail) || strings.EqualFold(usr.Email, filter.UsernameOrEmail)):
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) QueryUsers(_ context.Context, filter *user.QueryFilter, ordering []core.DBOrdering, _ ...core.DBExecutor) ([]user.User, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	users := make([]user.User, 0)
	for _, usr := range repo.query() {
		if filter != nil {
			if filter.Role != "" && usr.Role != filter.Role {
				continue
			}
			if filter.IsActive != nil && usr.IsActive != *filter.IsActive {
				continue
			}
			if filter.Search != "" {
				kw := strings.ToLower(filter.Search)
				if !strings.Contains(strings.ToLower(usr.Name), kw) &&
					!strings.Contains(strings.ToLower(usr.Username), kw) &&
					!strings.Contains(strings.ToLower(usr.Email), kw) {
					continue
				}
			}
			if !filter.CreatedFrom.IsZero() && usr.CreatedAt.Before(filter.CreatedFrom) {
				continue
			}
			if !filter.CreatedTo.IsZero() && usr.CreatedAt.After(filter.CreatedTo) {
				continue
			}
		}
		users = append(users, usr)
	}

	for _, ord := range ordering {
		if ord.Field == "name" {
			asc := ord.Ascending
			sort.SliceStable(users, func(i, j int) bool {
				if asc {
					return users[i].Name < users[j].Name
				}
				return users[i].Name > users[j].Name
			})
		}
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	repo.db.mut.Lock()
	defer repo.db.mut.Unlock()

	orig, ok := repo.db.users[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	updated := *orig
	if usr.Name != "" {
		updated.Name = usr.Name
	}
	if usr.Username != "" {
		updated.Username = usr.Username
	}
	if usr.Email != "" {
		updated.Email = usr.Email
	}
	if usr.Role != "" {
		updated.Role = usr.Role
	}
	if usr.PasswordHash != nil {
		updated.PasswordHash = usr.PasswordHash
	}
	if !usr.LastLogin.IsZero() {
		updated.LastLogin = usr.LastLogin
	}
	updated.IsActive = usr.IsActive
	updated.UpdatedAt = time.Now().UTC()

	u := updated
	write(exec, func() { repo.db.users[u.ID] = &u })
	return updated, nil
}

func (repo *userRepository) DeleteUsersByID(_ context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	repo.db.mut.Lock()
	defer repo.db.mut.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.users[id]; ok {
			n++
			delID := id
			write(exec, func() { delete(repo.db.users, delID) })
		}
	}
	return n, nil
}

// UserIDsByRole backs announcement fanout.
func (repo *userRepository) UserIDsByRole(_ context.Context, roles ...string) ([]string, error) {
	repo.db.mut.RLock()
	defer repo.db.mut.RUnlock()

	wanted := make(map[string]bool, len(roles))
	for _, r := range roles {
		wanted[r] = true
	}
	ids := make([]string, 0)
	for _, usr := range repo.query() {
		if usr.IsActive && wanted[usr.Role] {
			ids = append(ids, usr.ID)
		}
	}
	return ids, nil
}
