package api

// Method is a gateway operation name. Only the constants below exist.
type Method string

const (
	MethodAuthenticate Method = "authenticate"
	MethodSaveKey      Method = "saveKey"
	MethodGetKey       Method = "getKey"
	MethodDeleteKey    Method = "deleteKey"
)

var allowedMethods = map[string]Method{
	string(MethodAuthenticate): MethodAuthenticate,
	string(MethodSaveKey):      MethodSaveKey,
	string(MethodGetKey):       MethodGetKey,
	string(MethodDeleteKey):    MethodDeleteKey,
}

// ParseMethod matches name against the allow-list. Matching is exact.
func ParseMethod(name string) (Method, bool) {
	m, ok := allowedMethods[name]
	return m, ok
}

// Methods lists the allowed methods in a stable order.
func Methods() []Method {
	return []Method{MethodAuthenticate, MethodSaveKey, MethodGetKey, MethodDeleteKey}
}
