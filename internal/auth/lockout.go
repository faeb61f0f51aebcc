package auth

// LockoutThreshold is the number of consecutive failed login attempts that
// locks an account.
const LockoutThreshold = 3

// AccountState is the lockout state of an account: Active(FailedAttempts)
// while Locked is false, or the absorbing Locked state.
//
// Invariant: 0 <= FailedAttempts < LockoutThreshold while Locked is false.
type AccountState struct {
	FailedAttempts int
	Locked         bool
}

// Outcome is the result of driving the lockout machine through one login
// attempt.
type Outcome struct {
	// State is the account state after the attempt.
	State AccountState

	// Allowed reports whether authentication succeeds.
	Allowed bool

	// Remaining is the number of attempts left before lockout. Only
	// meaningful when Allowed is false and the account is not locked.
	Remaining int
}

// Advance applies one login attempt to the lockout state machine.
//
// Transitions:
//   - Locked: the attempt is rejected regardless of the password and the
//     state does not change. There is no transition out of Locked here;
//     unlocking requires out-of-band intervention.
//   - Active, correct password: the counter resets to zero and the attempt
//     is allowed.
//   - Active, wrong password: the counter increments; reaching the
//     threshold locks the account, otherwise Remaining reports the attempts
//     left.
//
// Advance is pure: callers persist the returned state and are responsible
// for serialising concurrent attempts against the same account.
func Advance(state AccountState, passwordOK bool) Outcome {
	if state.Locked {
		return Outcome{State: state, Allowed: false}
	}

	if passwordOK {
		return Outcome{State: AccountState{}, Allowed: true}
	}

	failed := state.FailedAttempts + 1
	if failed >= LockoutThreshold {
		return Outcome{
			State:   AccountState{FailedAttempts: failed, Locked: true},
			Allowed: false,
		}
	}

	return Outcome{
		State:     AccountState{FailedAttempts: failed},
		Allowed:   false,
		Remaining: LockoutThreshold - failed,
	}
}
