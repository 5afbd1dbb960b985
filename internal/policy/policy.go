// Package policy holds the role/relationship access checks consulted before
// every lifecycle-mutating operation. Checks are pure: they look only at the
// actor, the target, and the loan in hand.
package policy

import (
	"lendflow-backend/internal/domain/apperr"
	"lendflow-backend/internal/domain/loan"
	"lendflow-backend/internal/domain/user"
)

// CanApply: only merchants submit applications (for themselves or on behalf
// of a linked customer).
func CanApply(actor *user.User) error {
	if actor.Role != user.RoleMerchant {
		return apperr.Forbidden("only merchants may apply for loans")
	}
	return nil
}

// CanAssign: bankers and admins may assign a reviewer.
func CanAssign(actor *user.User) error {
	switch actor.Role {
	case user.RoleBanker, user.RoleAdmin:
		return nil
	case user.RoleCustomer, user.RoleMerchant:
		return apperr.Forbidden("only bankers or admins may assign a reviewer")
	}
	return apperr.Forbidden("unknown role")
}

// CanDecide: only the banker already assigned to this loan may approve,
// reject or disburse it.
func CanDecide(actor *user.User, l *loan.Loan) error {
	if actor.Role != user.RoleBanker {
		return apperr.Forbidden("only bankers may decide on loans")
	}
	if l.BankerID != actor.UserID {
		return apperr.Forbidden("not the assigned banker for this loan")
	}
	return nil
}

// CanCancel: the applicant or the submitting merchant of this loan.
func CanCancel(actor *user.User, l *loan.Loan) error {
	if actor.UserID == l.ApplicantID || (l.MerchantID != "" && actor.UserID == l.MerchantID) {
		return nil
	}
	return apperr.Forbidden("not your loan")
}

// CanView applies role-scoped read visibility for a single loan.
func CanView(actor *user.User, l *loan.Loan) error {
	switch actor.Role {
	case user.RoleAdmin:
		return nil
	case user.RoleCustomer:
		if l.ApplicantID == actor.UserID {
			return nil
		}
	case user.RoleMerchant:
		if l.MerchantID == actor.UserID || l.ApplicantID == actor.UserID {
			return nil
		}
	case user.RoleBanker:
		if l.BankerID == actor.UserID {
			return nil
		}
		// Unassigned pool: visible only inside the banker's catchment.
		if l.BankerID == "" && !l.Status.Terminal() {
			if actor.Banker != nil && actor.Banker.PostalCode != "" && actor.Banker.PostalCode == l.PostalCode {
				return nil
			}
		}
	}
	return apperr.Forbidden("not your loan")
}

// CanActOnBehalf governs KYC operations targeting another user's record: a
// merchant only for a customer linked to it, bankers and admins for anyone.
func CanActOnBehalf(actor, target *user.User) error {
	if actor.UserID == target.UserID {
		return nil
	}
	switch actor.Role {
	case user.RoleBanker, user.RoleAdmin:
		return nil
	case user.RoleMerchant:
		if target.OwnedBy(actor.UserID) {
			return nil
		}
		return apperr.Forbidden("customer does not belong to this merchant")
	case user.RoleCustomer:
		return apperr.Forbidden("customers may not act for other users")
	}
	return apperr.Forbidden("unknown role")
}

// CanChangeUserStatus: admins only, and never on their own account.
func CanChangeUserStatus(actor, target *user.User) error {
	if actor.Role != user.RoleAdmin {
		return apperr.Forbidden("only admins may change user status")
	}
	if actor.UserID == target.UserID {
		return apperr.Forbidden("admins may not change their own status")
	}
	return nil
}
