// Package supportdesk is the backend for a customer support chat product. It
// resolves bearer credentials into persisted users, stores conversations, and
// streams agent replies over server sent events.
//
// Credential resolution:
//   - The Resolver accepts two token shapes from the same Authorization
//     header. A compact HS256 token carrying an email claim is verified
//     cryptographically and then matched to a persisted user and an active
//     session. Anything else is treated as an opaque session token and
//     resolved through a store lookup; no identity can be derived from the
//     value itself.
//   - Resolution is read only and runs per request, so session revocation
//     takes effect immediately.
//
// Storage:
//   - Users, sessions, chat messages, and tasks persist through Bun backed
//     repositories. The RepositoryManager bundles them with transaction
//     support for callers that need multi table writes.
//
// Agent runtime:
//   - The agent package talks to a hosted runtime over its streaming API.
//     Task management tools are exposed back to the runtime through the
//     toolserver package, keyed by user id and always filtered by owner.
package supportdesk
