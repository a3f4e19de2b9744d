// Package auth はモック認証のセッションストアとクライアントごとのレジストリを提供する。
//
// Store はクライアント（署名付きCookieで識別されるブラウザ）ごとのセッション状態を保持し、
// Directory はプロセス全体で共有されるモックのID一覧を保持する。
package auth

import (
	"fmt"
	"strconv"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/wanderluxe/internal/model"
)

// SentinelPassword は全モックアカウント共通のパスワード。
const SentinelPassword = "password"

// DefaultSeed はディレクトリの初期アカウントを返す。
func DefaultSeed() []model.Identity {
	return []model.Identity{
		{ID: "1", Email: "admin@wanderluxe.com", DisplayName: "Admin User", Role: model.RoleAdmin},
		{ID: "2", Email: "user@example.com", DisplayName: "Regular User", Role: model.RoleUser},
	}
}

// Directory はメールアドレスで一意なモックIDの一覧。
// 登録はプロセスの生存期間中のみ有効で、永続化されない。
type Directory struct {
	mu           sync.RWMutex
	entries      []model.Identity
	passwordHash []byte
}

// NewDirectory はseedを元にDirectoryを生成する。
// 共通パスワードはbcryptハッシュとして保持する。costにはbcrypt.DefaultCost等を指定する。
func NewDirectory(seed []model.Identity, cost int) (*Directory, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(SentinelPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash sentinel password: %w", err)
	}

	entries := make([]model.Identity, len(seed))
	copy(entries, seed)

	return &Directory{
		entries:      entries,
		passwordHash: hash,
	}, nil
}

// Authenticate はメールアドレスの完全一致と共通パスワードで認証する。
// 一致しない場合は model.ErrInvalidCredentials を返す。
func (d *Directory) Authenticate(email, password string) (*model.Identity, error) {
	d.mu.RLock()
	found, ok := d.find(email)
	d.mu.RUnlock()

	if !ok {
		return nil, model.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(d.passwordHash, []byte(password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}
	return &found, nil
}

// Register は新しいIDをロールuserで追加する。
// IDは現在の件数+1。メールアドレスが既に存在する場合（大文字小文字を区別）は
// model.ErrEmailAlreadyExists を返す。
func (d *Directory) Register(email, displayName string) (*model.Identity, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.find(email); ok {
		return nil, model.ErrEmailAlreadyExists
	}

	identity := model.Identity{
		ID:          strconv.Itoa(len(d.entries) + 1),
		Email:       email,
		DisplayName: displayName,
		Role:        model.RoleUser,
	}
	d.entries = append(d.entries, identity)
	return &identity, nil
}

// Len は登録済みIDの件数を返す。
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

// find はロック保持中に呼び出すこと。
func (d *Directory) find(email string) (model.Identity, bool) {
	for _, e := range d.entries {
		if e.Email == email {
			return e, true
		}
	}
	return model.Identity{}, false
}
