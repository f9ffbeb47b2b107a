package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/gin-gonic/gin"
)

// fail writes the uniform error envelope.
func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// looseBool accepts the boolean spellings the forum frontend has
// historically sent: true/false, 1/0 and "1"/"true". Normalizing here
// keeps every read site on plain bools.
type looseBool bool

func (b *looseBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "true", "1", `"1"`, `"true"`:
		*b = true
		return nil
	case "false", "0", `"0"`, `"false"`:
		*b = false
		return nil
	}

	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid boolean value %s", data)
	}
	*b = looseBool(v)
	return nil
}
