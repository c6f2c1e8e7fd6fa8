/*
Package user implements the user-reference constraint.

PURPOSE:
  A user cell holds one or more references to people: emails, directory IDs
  or display names. References are resolved against the directory passed in
  generic.Environment when the constraint is built, and stored by email.

KEY CONCEPTS:
  - Directory: case-insensitive lookup by email, ID or folded name
  - External users: with ExternalUsers set, a well-formed email that isn't
    in the directory still resolves, to itself
  - Current user: the generic.OperandCurrentUser operand resolves to
    Environment.CurrentUser when a condition is evaluated

ORDERING:
  Single references order by display name. Multi references have no order:
  CompareTo returns 0 and Orderable reports false.
*/
package user

import (
	"encoding/json"
	"net/mail"
	"strconv"
	"strings"

	"github.com/warp/value-engine/generic"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

type Config struct {
	Multi         bool `json:"multi,omitempty"`
	ExternalUsers bool `json:"externalUsers,omitempty"`
}

// =============================================================================
// DIRECTORY
// =============================================================================

// Directory resolves references to users. Built once per constraint.
type Directory struct {
	users     []generic.DirectoryUser
	byKey     map[string]int
	normalize generic.NormalizeFunc
}

func NewDirectory(users []generic.DirectoryUser, normalize generic.NormalizeFunc) *Directory {
	if normalize == nil {
		normalize = generic.FoldText
	}
	d := &Directory{
		users:     append([]generic.DirectoryUser(nil), users...),
		byKey:     make(map[string]int, len(users)*3),
		normalize: normalize,
	}
	// Names are the weakest key: emails and IDs win on collision.
	for i, u := range d.users {
		if u.Name != "" {
			d.byKey["name:"+normalize(strings.TrimSpace(u.Name))] = i
		}
	}
	for i, u := range d.users {
		if u.ID != "" {
			d.byKey["id:"+strings.TrimSpace(u.ID)] = i
		}
		if u.Email != "" {
			d.byKey["email:"+emailKey(u.Email)] = i
		}
	}
	return d
}

// Lookup finds a user by email, ID or name.
func (d *Directory) Lookup(ref string) (generic.DirectoryUser, bool) {
	ref = strings.TrimSpace(ref)
	for _, key := range []string{"email:" + emailKey(ref), "id:" + ref, "name:" + d.normalize(ref)} {
		if i, ok := d.byKey[key]; ok {
			return d.users[i], true
		}
	}
	return generic.DirectoryUser{}, false
}

func emailKey(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// IsEmail reports whether s is a bare address, without display name.
func IsEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == strings.TrimSpace(s)
}

// =============================================================================
// CONSTRAINT
// =============================================================================

type Constraint struct {
	config      Config
	directory   *Directory
	currentUser string
	normalize   generic.NormalizeFunc
}

var _ generic.Constraint = (*Constraint)(nil)

func NewConstraint(cfg Config, env generic.Environment) *Constraint {
	return &Constraint{
		config:      cfg,
		directory:   NewDirectory(env.Users, env.Normalizer()),
		currentUser: env.CurrentUser,
		normalize:   env.Normalizer(),
	}
}

func init() {
	generic.RegisterConstraint(generic.ConstraintUser, func(config json.RawMessage, env generic.Environment) (generic.Constraint, error) {
		var cfg Config
		if err := generic.DecodeConfig(generic.ConstraintUser, config, &cfg); err != nil {
			return nil, err
		}
		return NewConstraint(cfg, env), nil
	})
}

func (c *Constraint) Type() generic.ConstraintType { return generic.ConstraintUser }
func (c *Constraint) Category() generic.Category    { return generic.CategorySet }
func (c *Constraint) Config() any                   { return c.config }

func (c *Constraint) CreateValue(raw generic.Raw) generic.Value {
	return c.newValue(raw, nil)
}

// reference is one item of a user cell.
type reference struct {
	text     string
	user     generic.DirectoryUser
	resolved bool
}

func (r reference) key() string {
	if r.resolved {
		return emailKey(r.user.Email)
	}
	return emailKey(r.text)
}

func (r reference) display() string {
	if !r.resolved {
		return r.text
	}
	if r.user.Name != "" {
		return r.user.Name
	}
	return r.user.Email
}

func (c *Constraint) resolve(item string) reference {
	if u, ok := c.directory.Lookup(item); ok && u.Email != "" {
		return reference{text: item, user: u, resolved: true}
	}
	if c.config.ExternalUsers && IsEmail(item) {
		return reference{text: item, user: generic.DirectoryUser{Email: strings.TrimSpace(item)}, resolved: true}
	}
	return reference{text: item}
}

// splitItems accepts a list, or text holding comma or semicolon separated
// references.
func splitItems(raw generic.Raw) []string {
	if raw.Kind() == generic.RawText {
		s, _ := raw.AsText()
		fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
		return generic.List(fields...).Items()
	}
	return raw.Items()
}

func (c *Constraint) newValue(raw generic.Raw, input *string) *Value {
	v := &Value{c: c, raw: raw, input: input}
	for _, item := range splitItems(raw) {
		ref := c.resolve(item)
		v.refs = append(v.refs, ref)
		if ref.resolved {
			v.resolved++
		}
	}
	return v
}

// =============================================================================
// VALUE
// =============================================================================

type Value struct {
	c        *Constraint
	raw      generic.Raw
	refs     []reference
	resolved int
	input    *string
}

var (
	_ generic.Value   = (*Value)(nil)
	_ generic.Orderer = (*Value)(nil)
)

func (v *Value) Constraint() generic.Constraint { return v.c }
func (v *Value) Raw() generic.Raw               { return v.raw }

// Users returns the resolved users, in input order.
func (v *Value) Users() []generic.DirectoryUser {
	users := make([]generic.DirectoryUser, 0, v.resolved)
	for _, r := range v.refs {
		if r.resolved {
			users = append(users, r.user)
		}
	}
	return users
}

func (v *Value) complete() bool {
	return v.resolved > 0 && v.resolved == len(v.refs)
}

func (v *Value) Format() string {
	if v.input != nil {
		return *v.input
	}
	if !v.complete() {
		return v.raw.String()
	}
	names := make([]string, len(v.refs))
	for i, r := range v.refs {
		names[i] = r.display()
	}
	return strings.Join(names, ", ")
}

func (v *Value) FormatUnits(int) string { return v.Format() }

// Preview shows the first name and how many more follow.
func (v *Value) Preview() string {
	if v.input != nil || !v.complete() || len(v.refs) < 2 {
		return v.Format()
	}
	return v.refs[0].display() + " +" + strconv.Itoa(len(v.refs)-1)
}

// Serialize stores emails: text for single references, a list for multi.
func (v *Value) Serialize() generic.Raw {
	if !v.complete() {
		return v.raw
	}
	emails := make([]string, len(v.refs))
	for i, r := range v.refs {
		emails[i] = r.user.Email
	}
	if v.c.config.Multi {
		return generic.List(emails...)
	}
	return generic.Text(strings.Join(emails, ", "))
}

// IsValid requires every reference to resolve, and at least one. Unless
// ignoreConfig is set, a single-user constraint rejects several references.
func (v *Value) IsValid(ignoreConfig bool) bool {
	if !v.complete() {
		return false
	}
	return ignoreConfig || v.c.config.Multi || len(v.refs) == 1
}

func (v *Value) Orderable() bool { return !v.c.config.Multi }

func (v *Value) CompareTo(other generic.Value) int {
	o, ok := other.(*Value)
	if !ok || !v.Orderable() {
		return 0
	}
	if r, done := generic.CompareInvalid(v.complete(), o.complete(), v.raw, o.raw); done {
		return r
	}
	return strings.Compare(v.c.normalize(v.Format()), v.c.normalize(o.Format()))
}

func (v *Value) Increment() generic.Value { return nil }
func (v *Value) Decrement() generic.Value { return nil }

func (v *Value) Copy() generic.Value                   { return v.c.newValue(v.raw, nil) }
func (v *Value) WithRaw(raw generic.Raw) generic.Value { return v.c.newValue(raw, nil) }

func (v *Value) ParseInput(text string) generic.Value {
	return v.c.newValue(generic.Text(text), &text)
}

func (v *Value) EditBuffer() (string, bool) {
	if v.input == nil {
		return "", false
	}
	return *v.input, true
}

func (v *Value) keys() []string {
	keys := make([]string, len(v.refs))
	for i, r := range v.refs {
		keys[i] = r.key()
	}
	return keys
}

// operandKeys resolves operands the same way cell items are resolved.
// A current-user operand with no current user matches nothing.
func (v *Value) operandKeys(operands []generic.Operand) []string {
	var keys []string
	for _, op := range operands {
		raw := op.Value
		if op.Kind == generic.OperandCurrentUser {
			if v.c.currentUser == "" {
				continue
			}
			raw = generic.Text(v.c.currentUser)
		}
		keys = append(keys, v.c.newValue(raw, nil).keys()...)
	}
	return keys
}

func (v *Value) MeetCondition(cond generic.ConditionType, operands []generic.Operand) bool {
	return generic.MeetSet(cond, v.keys(), v.operandKeys(operands))
}

// MeetFullTexts searches display names and emails.
func (v *Value) MeetFullTexts(needles []string) bool {
	text := v.Format()
	for _, r := range v.refs {
		if r.resolved {
			text += " " + r.user.Email
		}
	}
	return generic.MeetFullTexts(text, needles, v.c.normalize)
}
