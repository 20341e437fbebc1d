package model

// Role 角色编号
type Role int

const (
	RoleAdmin Role = 0
	RoleUser  Role = 1
)

// RoleSet 无序角色集合
type RoleSet []Role

// Roles 构造 RoleSet
func Roles(r ...Role) RoleSet { return RoleSet(r) }

// Has 是否包含 r
func (s RoleSet) Has(r Role) bool {
	for _, x := range s {
		if x == r {
			return true
		}
	}
	return false
}

// Intersects 两个集合是否有交集
func (s RoleSet) Intersects(other RoleSet) bool {
	for _, r := range s {
		if other.Has(r) {
			return true
		}
	}
	return false
}

// User 登录账号
type User struct {
	ID           string  `json:"_id"`
	Username     string  `json:"username"`
	PasswordHash string  `json:"-"`
	Roles        RoleSet `json:"roles"`
}
