// Package subscriptions decides whether a principal has the billing
// standing their role requires, and manages trial starts.
//
// Entitlement is a pure function of the subscription rows and the clock:
// a trial is entitled until trial_ends_at and not a moment longer, with no
// background job flipping state. Organization subscriptions take precedence
// over individual ones, so staff of a subscribed association never need
// their own subscription.
package subscriptions
