package runtime

var hostSyscalls = DarwinSyscalls
