package models

import (
	"testing"

	"timber-portal/types"
)

const (
	orgA = types.SnowflakeID(100)
	orgB = types.SnowflakeID(200)
)

func TestActorPermissions(t *testing.T) {
	producer := Actor{UserID: 1, Role: RoleProducer, OrganisationID: orgA}
	orgAdmin := Actor{UserID: 2, Role: RoleOrgAdmin, OrganisationID: orgA}
	superAdmin := Actor{UserID: 3, Role: RoleSuperAdmin}

	cases := []struct {
		name       string
		actor      Actor
		org        types.SnowflakeID
		canView    bool
		canMutate  bool
		canProduce bool
	}{
		{"producer in own org", producer, orgA, true, true, true},
		{"producer in other org", producer, orgB, false, false, false},
		{"org admin in own org", orgAdmin, orgA, true, true, false},
		{"org admin in other org", orgAdmin, orgB, false, false, false},
		// super-admin reads everything but never touches stock
		{"super admin anywhere", superAdmin, orgA, true, false, false},
		{"super admin other org", superAdmin, orgB, true, false, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.actor.CanView(c.org); got != c.canView {
				t.Fatalf("CanView = %v, want %v", got, c.canView)
			}
			if got := c.actor.CanMutate(c.org); got != c.canMutate {
				t.Fatalf("CanMutate = %v, want %v", got, c.canMutate)
			}
			if got := c.actor.CanProduce(c.org); got != c.canProduce {
				t.Fatalf("CanProduce = %v, want %v", got, c.canProduce)
			}
		})
	}
}

func TestActorZeroOrgNeverMatches(t *testing.T) {
	// an actor without an organisation must not pass the org checks even
	// against a zero-valued target
	orphan := Actor{UserID: 9, Role: RoleProducer, OrganisationID: 0}

	if orphan.CanView(0) {
		t.Fatal("CanView(0) should fail for an actor without an organisation")
	}
	if orphan.CanMutate(0) {
		t.Fatal("CanMutate(0) should fail for an actor without an organisation")
	}
	if orphan.CanProduce(0) {
		t.Fatal("CanProduce(0) should fail for an actor without an organisation")
	}
}
