package common

// AuthorizationHeaderName carries the bearer token on protected requests.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the only authorization scheme the API accepts.
const BearerScheme = "Bearer"
