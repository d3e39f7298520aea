// config/security_config.go
package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityMember                      // Any valid front-end token
	SecurityAdmin                       // Token carrying the admin role
)

// RoleAdmin is the token role granted to front-end users allowed to manage
// keys and ranks.
const RoleAdmin = "admin"

// EndpointSecurityConfig maps route names to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Operational - Public
	"healthz": SecurityPublic,
	"metrics": SecurityPublic,

	// Keys - Member
	"keys.redeem": SecurityMember,

	// Keys - Admin
	"keys.generate": SecurityAdmin,
	"keys.list":     SecurityAdmin,
	"keys.wipe":     SecurityAdmin,

	// Members - Admin
	"members.info":    SecurityAdmin,
	"members.promote": SecurityAdmin,
	"members.demote":  SecurityAdmin,
	"members.rank":    SecurityAdmin,
	"members.kick":    SecurityAdmin,
}

// GetSecurityLevel returns the security level for a route name.
// Unknown routes default to SecurityAdmin.
func GetSecurityLevel(route string) SecurityLevel {
	if level, ok := EndpointSecurityConfig[route]; ok {
		return level
	}
	return SecurityAdmin
}
