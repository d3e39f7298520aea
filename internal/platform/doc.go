// Package platform is an authenticated client for the group platform's REST
// API. It covers the handful of calls needed to manage one group: username
// resolution, role listing, a user's current role, and the join/kick/rank
// mutations.
//
// Every request carries the session credential as a cookie. The platform
// guards state-changing calls with an anti-forgery handshake: the first
// request is answered with 403 and an X-CSRF-TOKEN header, and the identical
// request must be re-sent with that header. The client performs that retry
// exactly once inside do; a second challenge is a hard failure.
package platform
