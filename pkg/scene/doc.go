// Package scene reads and writes avatar scene files and turns them into a
// [ring.Composition].
//
// # Format
//
// Scenes are TOML or JSON, chosen by file extension:
//
//	size = 256
//	padding = 8
//	fit = "center"
//	gap = 0.25
//	background = "#ffffff"
//
//	[[elements]]
//	id = 1
//	label = "Ada Lovelace"
//	image = "avatars/ada.png"
//
//	[[elements]]
//	label = "Grace Hopper"
//	color = "#e67e22"
//
// Image paths are relative to the scene file and may not leave its
// directory. PNG, JPEG, GIF, BMP, and WebP images are supported.
//
// Elements with the same id replace each other, exactly as
// [ring.Composition.AddWithID] does, so a scene may list more than five
// elements as long as it ends up with at most five slots.
//
// # Usage
//
//	s, err := scene.Load("team.toml")
//	if err != nil {
//	    return err
//	}
//	c, err := s.Build()
package scene
