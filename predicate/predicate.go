// Package predicate provides a small boolean expression language over guild roles.
//
// An expression is a whitespace separated sequence of role references (@name),
// the operators and, or, not, and parentheses:
//
//	( ( @role1 and @role2 ) and not @role3 ) or @role4
//
// "and" and "or" share the same precedence and are applied from left to right,
// so "@a or @b and @c" means "( @a or @b ) and @c". Use parentheses to group.
package predicate

import "fmt"

// Member is anything that can be asked whether it holds a role.
type Member interface {
	HasRole(roleID string) bool
}

// Directory resolves a role tag to the role's identifier.
// The second return value is false when no such role exists.
type Directory interface {
	RoleID(tag string) (string, bool)
}

// RoleDirectory is a Directory backed by a map from role tag to role identifier.
type RoleDirectory map[string]string

var _ Directory = RoleDirectory(nil)

// RoleID returns the identifier registered for the given tag.
func (d RoleDirectory) RoleID(tag string) (string, bool) {
	id, ok := d[tag]
	return id, ok
}

// Predicate is a parsed expression.
type Predicate interface {
	// Evaluate reports whether the member satisfies the predicate.
	Evaluate(member Member, dir Directory) bool

	// String renders the predicate with every binary operation parenthesized.
	String() string
}

// Role is a leaf that holds when the member has the referenced role.
// A tag unknown to the Directory never holds.
type Role struct {
	Tag string
}

// Not negates its operand.
type Not struct {
	Operand Predicate
}

// And holds when both sides hold.
type And struct {
	Left  Predicate
	Right Predicate
}

// Or holds when either side holds.
type Or struct {
	Left  Predicate
	Right Predicate
}

var (
	_ Predicate = (*Role)(nil)
	_ Predicate = (*Not)(nil)
	_ Predicate = (*And)(nil)
	_ Predicate = (*Or)(nil)
)

func (r *Role) Evaluate(member Member, dir Directory) bool {
	id, ok := dir.RoleID(r.Tag)
	if !ok {
		return false
	}
	return member.HasRole(id)
}

func (r *Role) String() string {
	return rolePrefix + r.Tag
}

func (n *Not) Evaluate(member Member, dir Directory) bool {
	return !n.Operand.Evaluate(member, dir)
}

func (n *Not) String() string {
	return fmt.Sprintf("not %s", n.Operand)
}

func (a *And) Evaluate(member Member, dir Directory) bool {
	return a.Left.Evaluate(member, dir) && a.Right.Evaluate(member, dir)
}

func (a *And) String() string {
	return fmt.Sprintf("(%s and %s)", a.Left, a.Right)
}

func (o *Or) Evaluate(member Member, dir Directory) bool {
	return o.Left.Evaluate(member, dir) || o.Right.Evaluate(member, dir)
}

func (o *Or) String() string {
	return fmt.Sprintf("(%s or %s)", o.Left, o.Right)
}

// Evaluate parses the expression and evaluates it against a single member.
func Evaluate(expression string, member Member, dir Directory) (bool, error) {
	p, err := Parse(expression)
	if err != nil {
		return false, err
	}
	return p.Evaluate(member, dir), nil
}

// SelectMembers returns the members satisfying the expression, in the given order.
// The expression is parsed before any member is inspected.
func SelectMembers[M Member](expression string, members []M, dir Directory) ([]M, error) {
	p, err := Parse(expression)
	if err != nil {
		return nil, err
	}
	return Select(p, members, dir), nil
}

// Select returns the members satisfying an already parsed predicate, in the given order.
func Select[M Member](p Predicate, members []M, dir Directory) []M {
	var selected []M
	for _, m := range members {
		if p.Evaluate(m, dir) {
			selected = append(selected, m)
		}
	}
	return selected
}
