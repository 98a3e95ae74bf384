package visitors

import (
	"crypto/sha256"
	"encoding/hex"
	"hash/fnv"
)

var aliasAdjectives = []string{
	"Amber", "Azure", "Bold", "Bright", "Brisk", "Calm", "Clever", "Cobalt", "Crimson", "Daring",
	"Electric", "Emerald", "Fearless", "Gentle", "Golden", "Graphite", "Happy", "Indigo", "Jade", "Keen",
	"Lively", "Lunar", "Magnetic", "Midnight", "Nimble", "Onyx", "Pearl", "Polar", "Quiet", "Rapid",
	"Sapphire", "Scarlet", "Silver", "Solar", "Steady", "Swift", "Titanium", "Velvet", "Vivid", "Wise",
}

var aliasModels = []string{
	"Cabrio", "Coupe", "Crossover", "Estate", "Fastback", "Hatchback", "Liftback", "Limousine", "Minivan", "Pickup",
	"Roadster", "Saloon", "Sedan", "Shooting", "Speedster", "Spider", "Targa", "Tourer", "Van", "Wagon",
	"Rally", "Cruiser", "Racer", "Drifter", "Explorer", "Voyager", "Runner", "Rover", "Glider", "Sprinter",
}

// Alias returns an anonymized "Adjective Model" label for a visitor key. The
// same key always yields the same alias.
func Alias(key string) string {
	h := fnv.New32a()
	h.Write([]byte(key))
	index := int(h.Sum32())

	adjIndex := index % len(aliasAdjectives)
	modelIndex := (index / len(aliasAdjectives)) % len(aliasModels)

	return aliasAdjectives[adjIndex] + " " + aliasModels[modelIndex]
}

// Pseudonym returns a short opaque token for a visitor key, for exports that
// must not reveal the key itself.
func Pseudonym(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:6])
}
