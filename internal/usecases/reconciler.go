package usecases

import (
	"fmt"

	"easy_admin/internal/entities"
)

// ReconcilePlan lists the store operations that converge a company's
// phone-bearing users to a desired phone set. Removals must be applied
// before additions.
type ReconcilePlan struct {
	ToAdd    []entities.NewUserSpec
	ToRemove []int64
}

func (p ReconcilePlan) IsEmpty() bool {
	return len(p.ToAdd) == 0 && len(p.ToRemove) == 0
}

// ContactName is the generated display name of the n-th phone contact.
func ContactName(n int) string {
	return fmt.Sprintf("Contato %d", n)
}

// Reconcile diffs desiredPhones against the phone-bearing users of companyID.
// Users of other companies and users without a phone are never touched, and
// users whose phone stays desired are left as they are. New contacts are
// numbered after the surviving phone-bearing users, in desired order. The
// desired list is re-normalized here; an empty result removes every
// phone-bearing user.
//
// Names are positional, not unique: if "Contato 1" is removed and "Contato 2"
// kept, the first addition is also named "Contato 2".
func Reconcile(companyID int64, desiredPhones []string, existingUsers []entities.User) ReconcilePlan {
	desired := normalizePhoneSet(desiredPhones)
	desiredSet := make(map[string]struct{}, len(desired))
	for _, phone := range desired {
		desiredSet[phone] = struct{}{}
	}

	plan := ReconcilePlan{
		ToAdd:    []entities.NewUserSpec{},
		ToRemove: []int64{},
	}

	kept := make(map[string]struct{})
	for _, u := range existingUsers {
		if u.CompanyID != companyID || !u.HasPhone() {
			continue
		}
		phone := u.PhoneValue()
		if _, ok := desiredSet[phone]; !ok {
			plan.ToRemove = append(plan.ToRemove, u.ID)
			continue
		}
		// a second record with the same phone would break uniqueness
		if _, dup := kept[phone]; dup {
			plan.ToRemove = append(plan.ToRemove, u.ID)
			continue
		}
		kept[phone] = struct{}{}
	}

	for _, phone := range desired {
		if _, ok := kept[phone]; ok {
			continue
		}
		plan.ToAdd = append(plan.ToAdd, entities.NewUserSpec{
			Name:      ContactName(len(kept) + len(plan.ToAdd) + 1),
			Phone:     phone,
			Role:      entities.RoleStaff,
			Activity:  entities.ActivityActive,
			CompanyID: companyID,
		})
	}

	return plan
}
