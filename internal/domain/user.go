package domain

// User is the mutable profile record. One string field per provider type;
// empty string means unlinked. Affiliation empty means unanswered.
type User struct {
	Owner       string `json:"owner"`
	Name        string `json:"name"`
	CreatedTime string `json:"createdTime"`

	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar"`
	Affiliation string `json:"affiliation"`
	Tag         string `json:"tag"`
	IsAdmin     bool   `json:"isAdmin"`

	Email    string `json:"email"`
	Phone    string `json:"phone"`
	GitHub   string `json:"github"`
	Google   string `json:"google"`
	WeChat   string `json:"wechat"`
	QQ       string `json:"qq"`
	Facebook string `json:"facebook"`
	DingTalk string `json:"dingtalk"`
	Weibo    string `json:"weibo"`
}

// userFields maps the canonical provider key to accessors. Kept explicit so
// adding a provider type is one line and the hot path has no reflection.
var userFields = map[string]struct {
	get func(*User) string
	set func(*User, string)
}{
	"affiliation": {func(u *User) string { return u.Affiliation }, func(u *User, v string) { u.Affiliation = v }},
	"email":       {func(u *User) string { return u.Email }, func(u *User, v string) { u.Email = v }},
	"phone":       {func(u *User) string { return u.Phone }, func(u *User, v string) { u.Phone = v }},
	"github":      {func(u *User) string { return u.GitHub }, func(u *User, v string) { u.GitHub = v }},
	"google":      {func(u *User) string { return u.Google }, func(u *User, v string) { u.Google = v }},
	"wechat":      {func(u *User) string { return u.WeChat }, func(u *User, v string) { u.WeChat = v }},
	"qq":          {func(u *User) string { return u.QQ }, func(u *User, v string) { u.QQ = v }},
	"facebook":    {func(u *User) string { return u.Facebook }, func(u *User, v string) { u.Facebook = v }},
	"dingtalk":    {func(u *User) string { return u.DingTalk }, func(u *User, v string) { u.DingTalk = v }},
	"weibo":       {func(u *User) string { return u.Weibo }, func(u *User, v string) { u.Weibo = v }},
}

// Field returns the value of the user field for a canonical provider key.
// ok is false for unknown keys.
func (u *User) Field(key string) (value string, ok bool) {
	f, ok := userFields[key]
	if !ok {
		return "", false
	}
	return f.get(u), true
}

// SetField assigns the user field for a canonical provider key. Unknown
// keys are rejected.
func (u *User) SetField(key, value string) bool {
	f, ok := userFields[key]
	if !ok {
		return false
	}
	f.set(u, value)
	return true
}

// Clone returns a copy safe to hand to another goroutine.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
