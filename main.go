package main

import "github.com/Selvasharanp/face-recognition-Yolo-v8/cmd"

func main() {
	cmd.Execute()
}
