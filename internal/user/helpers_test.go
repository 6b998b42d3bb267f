package user

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryRepository struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]User
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{nextID: 1, users: map[uint]User{}}
}

func (r *memoryRepository) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.ID = r.nextID
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	r.nextID++
	r.users[u.ID] = *u
	return nil
}

func (r *memoryRepository) List(_ context.Context) ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryRepository) FindByID(_ context.Context, id uint) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *memoryRepository) Update(_ context.Context, id uint, fields map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	for k, v := range fields {
		switch k {
		case "email":
			u.Email = v.(string)
		case "name":
			u.Name = v.(string)
		case "role":
			u.Role = v.(string)
		case "password":
			u.Password = v.(string)
		case "refresh_token":
			u.RefreshToken = v.(string)
		}
	}
	r.users[id] = u
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, u.ID)
	return nil
}
