package a

func sink(int)

func cond() bool

func straight() {
	sink(1)
}

func branch() {
	if cond() {
		sink(1)
	} else {
		sink(2)
	}
	sink(3)
}

func add(x, y int) int { // want `unsupported construct: binary operator \+`
	return x + y
}

func spawn() { // want `unsupported construct: go statement`
	go sink(4)
}
