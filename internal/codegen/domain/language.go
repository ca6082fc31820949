package domain

// SupportedLanguages is the closed set of generation targets the service
// accepts. Requests naming anything else are rejected before the quota is
// touched.
var SupportedLanguages = map[string]struct{}{
	// Programming languages
	"assembly": {}, "c": {}, "cpp": {}, "csharp": {}, "java": {}, "python": {},
	"javascript": {}, "typescript": {}, "swift": {}, "kotlin": {}, "rust": {},
	"go": {}, "php": {}, "ruby": {}, "dart": {}, "r": {}, "scala": {},
	"perl": {}, "lua": {}, "haskell": {},

	// Web development
	"html": {}, "css": {}, "react": {}, "angular": {}, "vue": {}, "svelte": {},
	"nextjs": {}, "nuxtjs": {}, "tailwindcss": {},

	// Backend & databases
	"nodejs": {}, "django": {}, "flask": {}, "express": {}, "springboot": {},
	"aspnet": {}, "laravel": {}, "graphql": {}, "rest": {}, "mysql": {},

	// Security
	"hashing": {}, "encryption": {},

	// System & low level
	"kernel": {}, "bios": {}, "driver": {}, "memory": {}, "bootloader": {},
	"firmware": {},

	// AI & ML
	"tensorflow": {}, "pytorch": {}, "neuralnetwork": {}, "deeplearning": {},
	"nlp": {}, "reinforcementlearning": {},

	// Shell scripting
	"powershell": {}, "bash": {}, "batch": {},

	// Others
	"microservices": {}, "docker": {}, "kubernetes": {}, "blockchain": {},
	"smartcontract": {}, "quantum": {},
}

// IsSupportedLanguage reports whether the service generates code for lang.
func IsSupportedLanguage(lang string) bool {
	_, ok := SupportedLanguages[lang]
	return ok
}
