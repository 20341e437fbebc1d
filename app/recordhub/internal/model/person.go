package model

// Person 人员
type Person struct {
	ID        string `json:"_id"`
	FirstName string `json:"firstName" validate:"required,startsletter"`
	LastName  string `json:"lastName" validate:"required,startsletter"`
	BirthDate Date   `json:"birthDate"`
}

// PersonPatch 部分更新，nil 字段保持不变
type PersonPatch struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	BirthDate *Date   `json:"birthDate"`
}

// Apply 将 patch 应用到 p 的副本
func (pp PersonPatch) Apply(p Person) Person {
	if pp.FirstName != nil {
		p.FirstName = *pp.FirstName
	}
	if pp.LastName != nil {
		p.LastName = *pp.LastName
	}
	if pp.BirthDate != nil {
		p.BirthDate = *pp.BirthDate
	}
	return p
}

// PersonRow 列表项，附带参与的项目数
type PersonRow struct {
	Person
	Projects int `json:"projects"`
}

// Initials 名与姓的首字符
func (p Person) Initials() string {
	return firstRune(p.FirstName) + firstRune(p.LastName)
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}
