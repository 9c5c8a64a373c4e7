// Package railkit generates printable cable rail systems: a channel rail,
// a snap-on cover and a sleeve connector joining two rails. Parts are
// built from a handful of dimensions, straight or bent through a rounded
// corner, drilled with mounting holes and exported as binary STL.
package railkit

import (
	"github.com/soypat/railkit/solid"
)

// Role identifies one of the generated parts.
type Role = solid.Role

const (
	RoleRail      = solid.RoleRail
	RoleCover     = solid.RoleCover
	RoleConnector = solid.RoleConnector
)

// Roles lists every role in export order.
var Roles = solid.Roles

// ErrNonFinite is returned when generation produced a NaN or infinite
// vertex. The workspace keeps its previous generation.
var ErrNonFinite = solid.ErrNonFinite

// ParseRole parses "rail", "cover" or "connector".
func ParseRole(s string) (Role, error) { return solid.ParseRole(s) }

// Filename returns the export file name of a role.
func Filename(role Role) string { return role.String() + ".stl" }
