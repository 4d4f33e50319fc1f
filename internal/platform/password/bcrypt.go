// Package password はパスワードのハッシュ化と照合を提供します。
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher はbcryptによる一方向ハッシュを扱います。
// ソルトは呼び出しごとに生成されるため、同じ入力でも異なるダイジェストになります。
type Hasher struct {
	cost int
}

// NewHasher は指定したコストでHasherを生成します。
// 範囲外のコストはbcrypt.DefaultCostに置き換えます。
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash は平文のシークレットをハッシュ化します。
func (h *Hasher) Hash(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify はシークレットがダイジェストの元の入力である場合のみtrueを返します。
// 不正な形式のダイジェストに対してもパニックせずfalseを返します。
func (h *Hasher) Verify(secret, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}
