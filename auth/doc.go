// Package auth implements the account side of packbox: password verifiers,
// bearer tokens and the two operations built on top of them (Register and
// Login).
//
// Passwords are never kept. What goes to the users table is a verifier made of
// a random salt and a 32 byte key derived with scrypt from the password and that
// salt. Checking a password means deriving the key again and comparing both keys
// in constant time. A verifier that cannot be parsed simply does not match and
// never causes an error.
//
// Tokens are HS256 JWTs signed with a secret read once from the environment.
// They carry the username and expire after one hour. There is no revocation,
// logging out is the client forgetting the token.
package auth
